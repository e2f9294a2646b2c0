package domain

import (
	"fmt"
	"time"
)

// DateRange representa um intervalo de datas inclusivo (since <= until)
type DateRange struct {
	Since time.Time
	Until time.Time
}

// NewDateRange cria um DateRange validando a ordem das datas
func NewDateRange(since, until time.Time) (DateRange, error) {
	since = Midnight(since)
	until = Midnight(until)

	if since.After(until) {
		return DateRange{}, fmt.Errorf(
			"intervalo de datas inválido: since (%s) é posterior a until (%s)",
			since.Format(time.DateOnly),
			until.Format(time.DateOnly),
		)
	}

	return DateRange{Since: since, Until: until}, nil
}

// Days retorna a quantidade de dias do intervalo, contando as duas pontas
func (dr DateRange) Days() int {
	return int(dr.Until.Sub(dr.Since).Hours()/24) + 1
}

func (dr DateRange) String() string {
	return fmt.Sprintf("%s..%s", dr.Since.Format(time.DateOnly), dr.Until.Format(time.DateOnly))
}

// Midnight normaliza um instante para a meia-noite UTC da mesma data
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DatePreset representa um período nomeado aceito pela plataforma
type DatePreset string

const (
	DatePresetToday     DatePreset = "today"
	DatePresetYesterday DatePreset = "yesterday"
	DatePresetLast3d    DatePreset = "last_3d"
	DatePresetLast7d    DatePreset = "last_7d"
	DatePresetLast14d   DatePreset = "last_14d"
	DatePresetLast28d   DatePreset = "last_28d"
	DatePresetThisMonth DatePreset = "this_month"
	DatePresetLastMonth DatePreset = "last_month"
	DatePresetLifetime  DatePreset = "lifetime"
)

// Range converte o preset em um intervalo concreto de datas relativo a now.
// Retorna false para presets sem intervalo explícito (lifetime), que devem
// ser repassados diretamente à plataforma.
func (p DatePreset) Range(now time.Time) (DateRange, bool) {
	today := Midnight(now)
	yesterday := today.AddDate(0, 0, -1)

	switch p {
	case DatePresetToday:
		return DateRange{Since: today, Until: today}, true
	case DatePresetYesterday:
		return DateRange{Since: yesterday, Until: yesterday}, true
	case DatePresetLast3d:
		return DateRange{Since: today.AddDate(0, 0, -3), Until: yesterday}, true
	case DatePresetLast7d:
		return DateRange{Since: today.AddDate(0, 0, -7), Until: yesterday}, true
	case DatePresetLast14d:
		return DateRange{Since: today.AddDate(0, 0, -14), Until: yesterday}, true
	case DatePresetLast28d:
		return DateRange{Since: today.AddDate(0, 0, -28), Until: yesterday}, true
	case DatePresetThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return DateRange{Since: first, Until: today}, true
	case DatePresetLastMonth:
		firstThis := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		lastPrev := firstThis.AddDate(0, 0, -1)
		firstPrev := time.Date(lastPrev.Year(), lastPrev.Month(), 1, 0, 0, 0, 0, time.UTC)
		return DateRange{Since: firstPrev, Until: lastPrev}, true
	}

	return DateRange{}, false
}

// ParseDatePreset valida um preset informado via API ou configuração
func ParseDatePreset(s string) (DatePreset, error) {
	preset := DatePreset(s)
	switch preset {
	case DatePresetToday, DatePresetYesterday, DatePresetLast3d, DatePresetLast7d,
		DatePresetLast14d, DatePresetLast28d, DatePresetThisMonth, DatePresetLastMonth,
		DatePresetLifetime:
		return preset, nil
	}
	return "", fmt.Errorf("preset de datas inválido: %q", s)
}

package syncing

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vfg2006/paid-social-sync/internal/domain"
)

// Normalizer converte registros brutos da plataforma no formato canônico da
// tabela fato
type Normalizer struct {
	platform domain.Platform
}

func NewNormalizer(platform domain.Platform) *Normalizer {
	return &Normalizer{platform: platform}
}

// Normalize converte um registro bruto em exatamente um InsightRecord ou o
// rejeita com MalformedRecordError quando o campo obrigatório de data é
// inválido. Campos opcionais malformados nunca causam falha: contadores
// ausentes viram zero e taxas ausentes ficam nulas, para não registrar uma
// medição que não aconteceu. O registro bruto é preservado integralmente.
func (n *Normalizer) Normalize(raw domain.RawRecord, level domain.Level, accountID string) (*domain.InsightRecord, error) {
	dateStr := stringValue(raw["date_start"])
	if dateStr == "" {
		return nil, &domain.MalformedRecordError{Field: "date_start", Reason: "ausente"}
	}

	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		return nil, &domain.MalformedRecordError{
			Field:  "date_start",
			Reason: fmt.Sprintf("com formato inválido (%q)", dateStr),
		}
	}

	record := &domain.InsightRecord{
		Date:            date,
		Level:           level,
		AccountGlobalID: n.platform.GlobalID(domain.LevelAccount, domain.NormalizeAccountID(accountID)),
		Impressions:     safeInt(raw["impressions"]),
		Clicks:          safeInt(raw["clicks"]),
		Spend:           safeFloat(raw["spend"]),
		Conversions:     conversions(raw),
		CTR:             safeFloatPtr(raw["ctr"]),
		Frequency:       safeFloatPtr(raw["frequency"]),
		RawMetrics:      raw,
	}

	record.CampaignGlobalID = n.globalIDPtr(domain.LevelCampaign, raw["campaign_id"])
	record.AdsetGlobalID = n.globalIDPtr(domain.LevelAdset, raw["adset_id"])
	record.AdGlobalID = n.globalIDPtr(domain.LevelAd, raw["ad_id"])

	return record, nil
}

// globalIDPtr monta o identificador global do nível quando o identificador
// bruto está presente, preservando nulo quando ausente
func (n *Normalizer) globalIDPtr(entity domain.Level, value any) *string {
	id := stringValue(value)
	if id == "" {
		return nil
	}

	globalID := n.platform.GlobalID(entity, id)
	return &globalID
}

// conversions soma os valores de actions como aproximação de conversões.
// Na ausência da lista, usa o campo conversions direto.
func conversions(raw domain.RawRecord) float64 {
	actions, ok := raw["actions"].([]any)
	if !ok {
		return safeFloat(raw["conversions"])
	}

	var total float64
	for _, action := range actions {
		entry, ok := action.(map[string]any)
		if !ok {
			continue
		}
		total += safeFloat(entry["value"])
	}

	return total
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// safeInt converte valores numéricos vindos da API (normalmente strings)
// retornando zero para ausentes ou inválidos
func safeInt(v any) int64 {
	switch value := v.(type) {
	case string:
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	case float64:
		return int64(value)
	case int:
		return int64(value)
	case int64:
		return value
	}
	return 0
}

func safeFloat(v any) float64 {
	parsed := safeFloatPtr(v)
	if parsed == nil {
		return 0
	}
	return *parsed
}

// safeFloatPtr retorna nulo para valores ausentes ou inválidos, distinguindo
// uma taxa não medida de uma taxa zero
func safeFloatPtr(v any) *float64 {
	switch value := v.(type) {
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil
		}
		return &parsed
	case float64:
		return &value
	case int:
		parsed := float64(value)
		return &parsed
	case int64:
		parsed := float64(value)
		return &parsed
	}
	return nil
}

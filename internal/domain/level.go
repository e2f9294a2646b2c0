package domain

import (
	"fmt"
	"strings"
)

// Platform identifica a plataforma de origem dos dados de mídia paga
type Platform string

const (
	PlatformMeta Platform = "meta"
)

// Level representa o nível hierárquico de granularidade de um registro de insights
type Level string

const (
	LevelAccount  Level = "account"
	LevelCampaign Level = "campaign"
	LevelAdset    Level = "adset"
	LevelAd       Level = "ad"
)

// FallbackOrder é a ordem fixa de fallback, do nível mais fino para o mais grosso
var FallbackOrder = []Level{LevelAd, LevelAdset, LevelCampaign}

// ParseLevel converte uma string em um Level válido
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToLower(strings.TrimSpace(s)))
	switch level {
	case LevelAccount, LevelCampaign, LevelAdset, LevelAd:
		return level, nil
	}
	return "", fmt.Errorf("nível de granularidade inválido: %q", s)
}

// Fallback retorna o próximo nível mais grosso da ordem de fallback.
// Retorna false quando o nível não possui fallback (ex.: account e campaign).
func (l Level) Fallback() (Level, bool) {
	for i, level := range FallbackOrder {
		if level == l && i+1 < len(FallbackOrder) {
			return FallbackOrder[i+1], true
		}
	}
	return "", false
}

// GlobalID monta um identificador global prefixado pela plataforma,
// garantindo unicidade entre plataformas que compartilham o mesmo warehouse.
// Exemplo: meta:campaign:123456
func (p Platform) GlobalID(entity Level, id string) string {
	return fmt.Sprintf("%s:%s:%s", p, entity, id)
}

// NormalizeAccountID garante o prefixo act_ usado pela API do Meta
func NormalizeAccountID(accountID string) string {
	if strings.HasPrefix(accountID, "act_") {
		return accountID
	}
	return "act_" + accountID
}

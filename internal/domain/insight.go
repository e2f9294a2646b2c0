package domain

import (
	"time"
)

// RawRecord é a estrutura opaca retornada pela plataforma, preservada
// integralmente para compatibilidade com campos futuros
type RawRecord map[string]any

// InsightRecord é o registro canônico de métricas de anúncios que alimenta
// a tabela fato do warehouse
type InsightRecord struct {
	Date             time.Time `json:"date"`
	Level            Level     `json:"level"`
	AccountGlobalID  string    `json:"account_global_id"`
	CampaignGlobalID *string   `json:"campaign_global_id"`
	AdsetGlobalID    *string   `json:"adset_global_id"`
	AdGlobalID       *string   `json:"ad_global_id"`
	Impressions      int64     `json:"impressions"`
	Clicks           int64     `json:"clicks"`
	Spend            float64   `json:"spend"`
	Conversions      float64   `json:"conversions"`

	// CTR e Frequency ficam nulos quando não medidos, para não registrar
	// uma taxa zero que nunca foi observada
	CTR       *float64 `json:"ctr"`
	Frequency *float64 `json:"frequency"`

	RawMetrics RawRecord `json:"raw_metrics"`
}

// InsightKey é a chave natural composta que decide entre update e insert
// no merge do warehouse. Identificadores ausentes são normalizados para
// string vazia, de modo que nulo e vazio sejam equivalentes na comparação.
type InsightKey struct {
	Date             string
	Level            Level
	AccountGlobalID  string
	CampaignGlobalID string
	AdsetGlobalID    string
	AdGlobalID       string
}

// Key monta a chave natural composta do registro
func (r *InsightRecord) Key() InsightKey {
	return InsightKey{
		Date:             r.Date.Format(time.DateOnly),
		Level:            r.Level,
		AccountGlobalID:  r.AccountGlobalID,
		CampaignGlobalID: derefOrEmpty(r.CampaignGlobalID),
		AdsetGlobalID:    derefOrEmpty(r.AdsetGlobalID),
		AdGlobalID:       derefOrEmpty(r.AdGlobalID),
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SyncResult é o resultado consolidado de uma execução de sincronização
type SyncResult struct {
	Rows  int64  `json:"rows"`
	Table string `json:"table"`
}

// FetchQuery parametriza uma busca paginada de insights na plataforma.
// Exatamente um entre Range e Preset deve estar presente.
type FetchQuery struct {
	AccountID string
	Level     Level
	Range     *DateRange
	Preset    DatePreset
	PageSize  int
}

// PageHandler consome uma página de registros brutos retornados pela plataforma
type PageHandler func(records []RawRecord) error

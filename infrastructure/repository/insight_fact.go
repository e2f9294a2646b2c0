package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/vfg2006/paid-social-sync/infrastructure/database/postgres"
	"github.com/vfg2006/paid-social-sync/internal/domain"
)

//go:generate mockgen -source=insight_fact.go -destination=mocks/insight_fact_mock.go -package=mocks

const (
	// stagingAlphabet usa apenas minúsculas e dígitos para o sufixo, já que
	// identificadores não citados do Postgres são case-insensitive
	stagingAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	stagingIDLength = 8

	// insertBatchSize limita a quantidade de linhas por INSERT na staging
	insertBatchSize = 500
)

var insightColumns = []string{
	"date",
	"level",
	"account_global_id",
	"campaign_global_id",
	"adset_global_id",
	"ad_global_id",
	"impressions",
	"clicks",
	"spend",
	"conversions",
	"ctr",
	"frequency",
	"raw_metrics",
}

// InsightFactRepository grava lotes de insights normalizados na tabela fato
// de forma idempotente, via staging seguido de merge
type InsightFactRepository interface {
	EnsureFactTable(ctx context.Context) error
	MergeInsights(ctx context.Context, records []*domain.InsightRecord) error
	Table() string
}

type insightFactRepository struct {
	conn  *postgres.Connection
	table string
}

func NewInsightFactRepository(conn *postgres.Connection, table string) InsightFactRepository {
	return &insightFactRepository{
		conn:  conn,
		table: table,
	}
}

func (r *insightFactRepository) Table() string {
	return r.table
}

// EnsureFactTable cria a tabela fato quando ainda não existe. A tabela não
// declara chave primária: a unicidade é garantida operacionalmente pela
// chave natural composta usada no merge.
func (r *insightFactRepository) EnsureFactTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			date date NOT NULL,
			level text NOT NULL,
			account_global_id text,
			campaign_global_id text,
			adset_global_id text,
			ad_global_id text,
			impressions bigint NOT NULL DEFAULT 0,
			clicks bigint NOT NULL DEFAULT 0,
			spend double precision NOT NULL DEFAULT 0,
			conversions double precision NOT NULL DEFAULT 0,
			ctr double precision,
			frequency double precision,
			raw_metrics jsonb,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)`, pq.QuoteIdentifier(r.table))

	if _, err := r.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("erro ao criar a tabela fato %s: %w", r.table, err)
	}

	return nil
}

// MergeInsights carrega o lote em uma tabela de staging com nome único por
// execução e aplica um único MERGE contra a tabela fato, tudo na mesma
// transação. O merge é a fronteira de atomicidade: os dados só ficam
// visíveis para leitores quando ele conclui. Em caso de rollback a staging
// desaparece junto com a transação, nunca sobrevivendo à tentativa, e o
// sufixo único permite execuções concorrentes contra o mesmo destino.
func (r *insightFactRepository) MergeInsights(ctx context.Context, records []*domain.InsightRecord) error {
	if len(records) == 0 {
		return nil
	}

	// O MERGE do Postgres não pode afetar a mesma linha de destino duas
	// vezes: duplicatas do lote são resolvidas antes, mantendo o último
	// registro de cada chave (last-write-wins)
	batch := dedupeByKey(records)

	suffix, err := gonanoid.Generate(stagingAlphabet, stagingIDLength)
	if err != nil {
		return fmt.Errorf("erro ao gerar sufixo da tabela de staging: %w", err)
	}
	staging := fmt.Sprintf("%s_stg_%s", r.table, suffix)

	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		createSQL := fmt.Sprintf(
			"CREATE TABLE %s (LIKE %s INCLUDING DEFAULTS)",
			pq.QuoteIdentifier(staging),
			pq.QuoteIdentifier(r.table),
		)
		if _, err := tx.ExecContext(ctx, createSQL); err != nil {
			return fmt.Errorf("erro ao criar a tabela de staging %s: %w", staging, err)
		}

		for start := 0; start < len(batch); start += insertBatchSize {
			end := start + insertBatchSize
			if end > len(batch) {
				end = len(batch)
			}
			if err := loadStaging(ctx, tx, staging, batch[start:end]); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, mergeSQL(r.table, staging)); err != nil {
			return fmt.Errorf("erro ao executar o merge na tabela fato: %w", err)
		}

		dropSQL := fmt.Sprintf("DROP TABLE %s", pq.QuoteIdentifier(staging))
		if _, err := tx.ExecContext(ctx, dropSQL); err != nil {
			return fmt.Errorf("erro ao descartar a tabela de staging %s: %w", staging, err)
		}

		return nil
	})
}

func loadStaging(ctx context.Context, tx *sql.Tx, staging string, records []*domain.InsightRecord) error {
	builder := squirrel.StatementBuilder.
		Insert(pq.QuoteIdentifier(staging)).
		Columns(insightColumns...).
		PlaceholderFormat(squirrel.Dollar)

	for _, record := range records {
		rawJSON, err := json.Marshal(record.RawMetrics)
		if err != nil {
			return fmt.Errorf("erro ao serializar raw_metrics: %w", err)
		}

		builder = builder.Values(
			record.Date.Format(time.DateOnly),
			record.Level,
			record.AccountGlobalID,
			record.CampaignGlobalID,
			record.AdsetGlobalID,
			record.AdGlobalID,
			record.Impressions,
			record.Clicks,
			record.Spend,
			record.Conversions,
			record.CTR,
			record.Frequency,
			rawJSON,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao carregar o lote na staging: %w", err)
	}

	return nil
}

// mergeSQL monta o MERGE sobre a chave natural composta. Identificadores
// nulos e vazios são equivalentes na comparação, via COALESCE dos dois
// lados. Linhas casadas têm as métricas atualizadas (last-write-wins);
// as demais são inseridas.
func mergeSQL(fact, staging string) string {
	return fmt.Sprintf(`
		MERGE INTO %s AS t
		USING %s AS s
		ON t.date = s.date
			AND t.level = s.level
			AND COALESCE(t.account_global_id, '') = COALESCE(s.account_global_id, '')
			AND COALESCE(t.campaign_global_id, '') = COALESCE(s.campaign_global_id, '')
			AND COALESCE(t.adset_global_id, '') = COALESCE(s.adset_global_id, '')
			AND COALESCE(t.ad_global_id, '') = COALESCE(s.ad_global_id, '')
		WHEN MATCHED THEN UPDATE SET
			impressions = s.impressions,
			clicks = s.clicks,
			spend = s.spend,
			conversions = s.conversions,
			ctr = s.ctr,
			frequency = s.frequency,
			raw_metrics = s.raw_metrics,
			updated_at = now()
		WHEN NOT MATCHED THEN INSERT (
			date, level, account_global_id, campaign_global_id, adset_global_id,
			ad_global_id, impressions, clicks, spend, conversions, ctr, frequency,
			raw_metrics
		) VALUES (
			s.date, s.level, s.account_global_id, s.campaign_global_id,
			s.adset_global_id, s.ad_global_id, s.impressions, s.clicks, s.spend,
			s.conversions, s.ctr, s.frequency, s.raw_metrics
		)`,
		pq.QuoteIdentifier(fact),
		pq.QuoteIdentifier(staging),
	)
}

// dedupeByKey resolve duplicatas do lote pela chave natural composta,
// preservando a ordem de primeira ocorrência e o último valor de cada chave
func dedupeByKey(records []*domain.InsightRecord) []*domain.InsightRecord {
	seen := make(map[domain.InsightKey]int, len(records))
	result := make([]*domain.InsightRecord, 0, len(records))

	for _, record := range records {
		key := record.Key()
		if idx, ok := seen[key]; ok {
			result[idx] = record
			continue
		}
		seen[key] = len(result)
		result = append(result, record)
	}

	return result
}

package syncing

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/paid-social-sync/infrastructure/repository"
	"github.com/vfg2006/paid-social-sync/internal/domain"
)

const (
	// DefaultRetries é a quantidade padrão de tentativas adicionais por chunk
	DefaultRetries = 3
	// DefaultRetryBackoff é a espera fixa entre tentativas de um chunk
	DefaultRetryBackoff = 2 * time.Second
	// DefaultPageSize é o tamanho padrão de página nas buscas à plataforma
	DefaultPageSize = 500
)

// ChunkProcessorConfig parametriza o processamento de chunks
type ChunkProcessorConfig struct {
	Retries       int
	RetryBackoff  time.Duration
	PageSize      int
	SkipMalformed bool
}

// ChunkProcessor executa o ciclo busca→normalização→merge de um chunk como
// uma única tentativa lógica, com retry limitado. Qualquer falha descarta a
// tentativa inteira; nunca há commit parcial dentro de um chunk.
type ChunkProcessor struct {
	fetcher    InsightFetcher
	factRepo   repository.InsightFactRepository
	limiter    *RateLimiter
	normalizer *Normalizer

	retries       int
	backoff       time.Duration
	pageSize      int
	skipMalformed bool

	sleep func(ctx context.Context, d time.Duration) error
}

func NewChunkProcessor(
	fetcher InsightFetcher,
	factRepo repository.InsightFactRepository,
	limiter *RateLimiter,
	normalizer *Normalizer,
	cfg ChunkProcessorConfig,
) *ChunkProcessor {
	if cfg.Retries <= 0 {
		cfg.Retries = DefaultRetries
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	return &ChunkProcessor{
		fetcher:       fetcher,
		factRepo:      factRepo,
		limiter:       limiter,
		normalizer:    normalizer,
		retries:       cfg.Retries,
		backoff:       cfg.RetryBackoff,
		pageSize:      cfg.PageSize,
		skipMalformed: cfg.SkipMalformed,
		sleep:         sleepContext,
	}
}

// ProcessChunk processa um chunk com até retries tentativas adicionais e
// espera fixa entre elas (sem backoff exponencial, mantendo o comportamento
// previsível frente às cotas do upstream). Níveis indisponíveis não são
// retentados: o erro volta imediatamente para o orquestrador decidir o
// fallback hierárquico.
func (p *ChunkProcessor) ProcessChunk(
	ctx context.Context,
	accountID string,
	level domain.Level,
	chunk *domain.DateRange,
	preset domain.DatePreset,
) (int64, error) {
	chunkLabel := chunkLabelOrLifetime(chunk)

	attempt := 0
	for {
		attempt++

		rows, err := p.runAttempt(ctx, accountID, level, chunk, preset)
		if err == nil {
			return rows, nil
		}

		if domain.IsLevelUnavailable(err) {
			return 0, err
		}

		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"level":      level,
			"chunk":      chunkLabel,
			"attempt":    attempt,
			"retries":    p.retries,
		}).WithError(err).Warn("Falha ao processar chunk de insights")

		if attempt > p.retries {
			return 0, fmt.Errorf("chunk %s abortado após %d tentativas: %w", chunkLabel, attempt, err)
		}

		if err := p.sleep(ctx, p.backoff); err != nil {
			return 0, err
		}
	}
}

// runAttempt executa uma tentativa completa: espera do rate limiter, busca
// paginada, normalização de cada registro e merge do lote no warehouse
func (p *ChunkProcessor) runAttempt(
	ctx context.Context,
	accountID string,
	level domain.Level,
	chunk *domain.DateRange,
	preset domain.DatePreset,
) (int64, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	batch := make([]*domain.InsightRecord, 0, p.pageSize)

	query := domain.FetchQuery{
		AccountID: accountID,
		Level:     level,
		Range:     chunk,
		Preset:    preset,
		PageSize:  p.pageSize,
	}

	err := p.fetcher.FetchInsights(ctx, query, func(records []domain.RawRecord) error {
		for _, raw := range records {
			record, err := p.normalizer.Normalize(raw, level, accountID)
			if err != nil {
				if p.skipMalformed && domain.IsMalformedRecord(err) {
					logrus.WithFields(logrus.Fields{
						"account_id": accountID,
						"level":      level,
						"chunk":      chunkLabelOrLifetime(chunk),
					}).WithError(err).Warn("Registro malformado ignorado por política de sincronização")
					continue
				}
				return err
			}
			batch = append(batch, record)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(batch) == 0 {
		return 0, nil
	}

	if err := p.factRepo.MergeInsights(ctx, batch); err != nil {
		return 0, fmt.Errorf("erro ao gravar chunk no warehouse: %w", err)
	}

	return int64(len(batch)), nil
}

func chunkLabelOrLifetime(chunk *domain.DateRange) string {
	if chunk == nil {
		return "lifetime"
	}
	return chunk.String()
}

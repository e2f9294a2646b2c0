package syncing

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/paid-social-sync/infrastructure/repository"
	"github.com/vfg2006/paid-social-sync/internal/config"
	"github.com/vfg2006/paid-social-sync/internal/domain"
)

// SyncRequest parametriza uma execução de sincronização para uma conta
type SyncRequest struct {
	AccountID string            `json:"account_id"`
	Level     domain.Level      `json:"level"`
	Levels    []domain.Level    `json:"levels"`
	Preset    domain.DatePreset `json:"date_preset"`
	Since     string            `json:"since"`
	Until     string            `json:"until"`
}

// Orchestrator coordena a sincronização completa de insights de uma conta
type Orchestrator interface {
	Sync(ctx context.Context, req SyncRequest) (*domain.SyncResult, error)
}

// Service implementa o orquestrador de sincronização: resolve datas e
// níveis, fragmenta o intervalo em chunks e processa cada chunk em ordem
// cronológica, acumulando o total de linhas gravadas
type Service struct {
	processor *ChunkProcessor
	factRepo  repository.InsightFactRepository

	fallbackEnabled bool
	chunkDays       int
	thresholdDays   int

	now func() time.Time
}

// NewService monta o orquestrador com o pipeline completo a partir da
// configuração. O rate limiter é compartilhado por referência com o
// processador, mantendo uma única linha do tempo de requisições.
func NewService(
	cfg *config.Config,
	fetcher InsightFetcher,
	factRepo repository.InsightFactRepository,
	limiter *RateLimiter,
) *Service {
	normalizer := NewNormalizer(domain.PlatformMeta)

	processor := NewChunkProcessor(fetcher, factRepo, limiter, normalizer, ChunkProcessorConfig{
		Retries:       cfg.Sync.Retries,
		RetryBackoff:  time.Duration(cfg.Sync.RetryBackoffSeconds * float64(time.Second)),
		PageSize:      cfg.Sync.PageSize,
		SkipMalformed: cfg.Sync.SkipMalformedRecords,
	})

	return &Service{
		processor:       processor,
		factRepo:        factRepo,
		fallbackEnabled: cfg.Sync.FallbackEnabled,
		chunkDays:       cfg.Sync.ChunkDays,
		thresholdDays:   cfg.Sync.FragmentThresholdDays,
		now:             time.Now,
	}
}

// Sync executa a sincronização de insights de uma conta. O resultado é
// binário: o total de linhas gravadas ou o erro propagado após o esgotamento
// dos retries; chunks já mesclados de uma execução abortada permanecem
// gravados no warehouse.
func (s *Service) Sync(ctx context.Context, req SyncRequest) (*domain.SyncResult, error) {
	if req.AccountID == "" {
		return nil, fmt.Errorf("conta não informada para sincronização")
	}

	dateRange, preset, err := s.resolveDates(req)
	if err != nil {
		return nil, err
	}

	if err := s.factRepo.EnsureFactTable(ctx); err != nil {
		return nil, fmt.Errorf("erro ao garantir a tabela fato: %w", err)
	}

	fields := logrus.Fields{
		"account_id": req.AccountID,
		"table":      s.factRepo.Table(),
	}
	if dateRange != nil {
		fields["since"] = dateRange.Since.Format(time.DateOnly)
		fields["until"] = dateRange.Until.Format(time.DateOnly)
	} else {
		fields["date_preset"] = preset
	}
	logrus.WithFields(fields).Info("Iniciando sincronização de insights")

	var total int64

	if len(req.Levels) > 0 {
		// Multinível explícito: cada nível roda de forma independente,
		// sem fallback, somando as linhas de todos os níveis
		for _, level := range req.Levels {
			rows, err := s.syncLevel(ctx, req.AccountID, level, dateRange, preset, false)
			if err != nil {
				return nil, err
			}
			total += rows
		}
	} else {
		level := req.Level
		if level == "" {
			level = domain.LevelAd
		}

		total, err = s.syncLevel(ctx, req.AccountID, level, dateRange, preset, s.fallbackEnabled)
		if err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"account_id": req.AccountID,
		"rows":       total,
		"table":      s.factRepo.Table(),
	}).Info("Sincronização de insights concluída")

	return &domain.SyncResult{Rows: total, Table: s.factRepo.Table()}, nil
}

// syncLevel processa todos os chunks de um nível em ordem cronológica.
// Quando o fallback está habilitado e o nível se mostra indisponível, a
// execução avança para o próximo nível mais grosso e permanece nele até o
// fim: um nível que falhou não é retentado na mesma execução.
func (s *Service) syncLevel(
	ctx context.Context,
	accountID string,
	level domain.Level,
	dateRange *domain.DateRange,
	preset domain.DatePreset,
	fallbackEnabled bool,
) (int64, error) {
	// Sem intervalo explícito (lifetime) há um único chunk lógico sem datas
	chunks := []*domain.DateRange{nil}
	if dateRange != nil {
		split := SplitDateRange(*dateRange, s.thresholdDays, s.chunkDays)
		chunks = chunks[:0]
		for i := range split {
			chunks = append(chunks, &split[i])
		}
	}

	current := level
	var total int64

	for i := 0; i < len(chunks); {
		// Checagem cooperativa de cancelamento entre chunks, para
		// interromper backfills longos sem esperar o próximo fetch
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		rows, err := s.processor.ProcessChunk(ctx, accountID, current, chunks[i], preset)
		if err != nil {
			if fallbackEnabled && domain.IsLevelUnavailable(err) {
				if next, ok := current.Fallback(); ok {
					logrus.WithFields(logrus.Fields{
						"account_id": accountID,
						"from_level": current,
						"to_level":   next,
					}).Warn("Nível indisponível, aplicando fallback para o restante da execução")

					// O chunk que falhou é reprocessado no nível mais grosso
					current = next
					continue
				}
			}
			return 0, err
		}

		total += rows
		i++
	}

	return total, nil
}

// resolveDates define o período efetivo da execução. Datas explícitas sempre
// prevalecem sobre um preset informado em conjunto; sem datas e sem preset,
// o padrão é ontem. O preset lifetime não tem intervalo concreto e é
// repassado à plataforma como um único chunk lógico.
func (s *Service) resolveDates(req SyncRequest) (*domain.DateRange, domain.DatePreset, error) {
	if req.Since != "" || req.Until != "" {
		if req.Since == "" || req.Until == "" {
			return nil, "", fmt.Errorf("since e until devem ser informados juntos")
		}

		since, err := time.Parse(time.DateOnly, req.Since)
		if err != nil {
			return nil, "", fmt.Errorf("data since inválida: %w", err)
		}
		until, err := time.Parse(time.DateOnly, req.Until)
		if err != nil {
			return nil, "", fmt.Errorf("data until inválida: %w", err)
		}

		dr, err := domain.NewDateRange(since, until)
		if err != nil {
			return nil, "", err
		}
		return &dr, "", nil
	}

	if req.Preset != "" {
		preset, err := domain.ParseDatePreset(string(req.Preset))
		if err != nil {
			return nil, "", err
		}

		if dr, ok := preset.Range(s.now()); ok {
			return &dr, "", nil
		}
		return nil, preset, nil
	}

	yesterday := domain.Midnight(s.now()).AddDate(0, 0, -1)
	return &domain.DateRange{Since: yesterday, Until: yesterday}, "", nil
}

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/paid-social-sync/infrastructure/repository"
	"github.com/vfg2006/paid-social-sync/internal/config"
	"github.com/vfg2006/paid-social-sync/internal/domain"
	"github.com/vfg2006/paid-social-sync/internal/usecases/syncing"
)

// InsightSyncConfig representa a configuração do agendador de sincronização
type InsightSyncConfig struct {
	CronSchedule string
	LookbackDays int
	Level        domain.Level
	SyncEnabled  bool
}

// InsightSyncService gerencia o agendamento e a execução da sincronização de
// insights para todas as contas ativas. As contas são processadas
// estritamente em sequência: o rate limiter do pipeline compartilha uma
// única linha do tempo de requisições.
type InsightSyncService struct {
	scheduler           *gocron.Scheduler
	config              InsightSyncConfig
	accountRepo         repository.AccountRepository
	orchestrator        syncing.Orchestrator
	runCtx              context.Context
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastSyncRows        int64
}

// NewInsightSyncService cria uma nova instância do serviço de sincronização
func NewInsightSyncService(
	accountRepo repository.AccountRepository,
	orchestrator syncing.Orchestrator,
	appConfig *config.Config,
) *InsightSyncService {
	level, err := domain.ParseLevel(appConfig.Sync.Level)
	if err != nil {
		logrus.WithError(err).Warn("Nível configurado inválido, usando ad")
		level = domain.LevelAd
	}

	insightConfig := InsightSyncConfig{
		CronSchedule: appConfig.Sync.CronSchedule,
		LookbackDays: appConfig.Sync.LookbackDays,
		Level:        level,
		SyncEnabled:  appConfig.Sync.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": insightConfig.CronSchedule,
		"lookback_days": insightConfig.LookbackDays,
		"level":         insightConfig.Level,
		"sync_enabled":  insightConfig.SyncEnabled,
	}).Info("Configuração do agendador de sincronização de insights carregada")

	return &InsightSyncService{
		scheduler:    scheduler,
		config:       insightConfig,
		accountRepo:  accountRepo,
		orchestrator: orchestrator,
		syncRunning:  false,
	}
}

// Start inicia o agendador
func (s *InsightSyncService) Start(ctx context.Context) error {
	s.runCtx = ctx

	if !s.config.SyncEnabled {
		logrus.Info("Sincronização agendada de insights desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de sincronização de insights")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.syncAllAccounts(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de insights: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização de insights")
		s.scheduler.Stop()
	}()

	return nil
}

// syncAllAccounts sincroniza os insights de todas as contas ativas
func (s *InsightSyncService) syncAllAccounts(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de insights já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastSyncStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando sincronização de insights para todas as contas ativas")

	activeAccounts, err := s.accountRepo.ListAccounts([]domain.AdAccountStatus{domain.AdAccountStatusActive})
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar lista de contas para sincronização de insights")
		return
	}

	if len(activeAccounts) == 0 {
		logrus.Info("Nenhuma conta ativa encontrada para sincronização de insights")
		return
	}

	since, until := s.lookbackRange(time.Now())

	logrus.WithFields(logrus.Fields{
		"accounts":   len(activeAccounts),
		"start_date": since,
		"end_date":   until,
		"level":      s.config.Level,
	}).Info("Período para sincronização de insights")

	var totalRows int64
	for _, account := range activeAccounts {
		if ctx.Err() != nil {
			logrus.Info("Sincronização de insights interrompida por cancelamento")
			break
		}

		if account.ExternalID == "" {
			logrus.WithField("account_id", account.ID).Warn("Conta sem external_id. Pulando.")
			continue
		}

		result, err := s.orchestrator.Sync(ctx, syncing.SyncRequest{
			AccountID: account.ExternalID,
			Level:     s.config.Level,
			Since:     since,
			Until:     until,
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id":  account.ID,
				"external_id": account.ExternalID,
			}).WithError(err).Error("Erro ao sincronizar insights da conta")
			continue
		}

		totalRows += result.Rows
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration": duration.String(),
		"accounts": len(activeAccounts),
		"rows":     totalRows,
	}).Info("Sincronização de insights concluída")

	s.lastSyncCompletedAt = time.Now()
	s.lastSyncRows = totalRows
}

// lookbackRange monta o intervalo de datas da varredura: de lookback dias
// atrás até ontem
func (s *InsightSyncService) lookbackRange(now time.Time) (string, string) {
	yesterday := domain.Midnight(now).AddDate(0, 0, -1)
	since := domain.Midnight(now).AddDate(0, 0, -s.config.LookbackDays)
	return since.Format(time.DateOnly), yesterday.Format(time.DateOnly)
}

// TriggerManualSync inicia manualmente uma varredura de sincronização. A
// varredura roda em segundo plano sob o contexto de vida da aplicação, não
// sob o contexto da requisição que a disparou.
func (s *InsightSyncService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de insights já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	ctx := s.runCtx
	if ctx == nil {
		ctx = context.Background()
	}

	logrus.Info("Iniciando sincronização manual de insights")
	go s.syncAllAccounts(ctx)
}

// GetStatus retorna o status atual do agendador
func (s *InsightSyncService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_lookback_days":     s.config.LookbackDays,
		"sync_level":             s.config.Level,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_sync_rows":         s.lastSyncRows,
	}
}

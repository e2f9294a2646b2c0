package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/paid-social-sync/infrastructure/database/postgres"
	"github.com/vfg2006/paid-social-sync/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/paid-social-sync/infrastructure/repository"
	"github.com/vfg2006/paid-social-sync/internal/api"
	"github.com/vfg2006/paid-social-sync/internal/config"
	"github.com/vfg2006/paid-social-sync/internal/scheduler"
	"github.com/vfg2006/paid-social-sync/internal/usecases/syncing"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	accountRepo := repository.NewAccountRepository(pgConn)
	insightFactRepo := repository.NewInsightFactRepository(pgConn, cfg.Warehouse.FactTable)

	metaClient := metaclient.NewClient(cfg)

	// O rate limiter é único para o processo inteiro: todas as execuções,
	// agendadas ou manuais, compartilham a mesma linha do tempo de
	// requisições ao Meta
	limiter := syncing.NewRateLimiter(cfg.Sync.RateLimitRPS)

	orchestrator := syncing.NewService(cfg, metaClient, insightFactRepo, limiter)

	insightSyncService := scheduler.NewInsightSyncService(accountRepo, orchestrator, cfg)

	if err := insightSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de insights")
	} else {
		logrus.Info("Agendador de sincronização de insights iniciado com sucesso")
	}

	server, err := api.New(cfg, orchestrator, accountRepo, insightSyncService)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}

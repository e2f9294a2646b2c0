package handler

import (
	"net/http"

	"github.com/vfg2006/paid-social-sync/infrastructure/repository"
	"github.com/vfg2006/paid-social-sync/internal/api/handler/router"
	"github.com/vfg2006/paid-social-sync/internal/usecases/syncing"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Insights(service syncing.Orchestrator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/insights/sync",
			Method:  http.MethodPost,
			Handler: SyncInsights(service),
		},
	}
}

func AdAccounts(repo repository.AccountRepository) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/accounts",
			Method:  http.MethodGet,
			Handler: AdAccountList(repo),
		},
		{
			Path:    "/v1/accounts",
			Method:  http.MethodPost,
			Handler: RegisterAdAccounts(repo),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/:type/run",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
		{
			Path:    "/v1/cron/status",
			Method:  http.MethodGet,
			Handler: GetCronStatus(services),
		},
	}
}

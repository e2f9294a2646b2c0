package syncing

import (
	"context"

	"github.com/vfg2006/paid-social-sync/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/interfaces_mock.go -package=mocks

// InsightFetcher define a interface do adaptador de plataforma. A implementação
// deve paginar internamente, entregar cada página ao handler e propagar erros
// sem fazer retry: o retry do chunk inteiro é responsabilidade do processador.
type InsightFetcher interface {
	FetchInsights(ctx context.Context, query domain.FetchQuery, handler domain.PageHandler) error
}

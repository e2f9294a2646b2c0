package metaclient

import (
	"context"
	"net/http"
	"time"

	"github.com/vfg2006/paid-social-sync/internal/config"
	"github.com/vfg2006/paid-social-sync/internal/domain"
)

// requestTimeout é o timeout generoso por chamada HTTP à API do Meta
const requestTimeout = 60 * time.Second

type Client interface {
	FetchInsights(ctx context.Context, query domain.FetchQuery, handler domain.PageHandler) error
}

type MetaClient struct {
	Cfg        *config.Config
	httpClient *http.Client
}

func NewClient(cfg *config.Config) Client {
	return &MetaClient{
		Cfg: cfg,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/paid-social-sync/internal/domain"
	"github.com/vfg2006/paid-social-sync/internal/usecases/syncing"
)

type stubOrchestrator struct {
	gotReq syncing.SyncRequest
	result *domain.SyncResult
	err    error
}

func (s *stubOrchestrator) Sync(_ context.Context, req syncing.SyncRequest) (*domain.SyncResult, error) {
	s.gotReq = req
	return s.result, s.err
}

func TestSyncInsights(t *testing.T) {
	t.Run("Requisição válida retorna o resultado da sincronização", func(t *testing.T) {
		orchestrator := &stubOrchestrator{
			result: &domain.SyncResult{Rows: 42, Table: "fact_ad_insights"},
		}

		body := `{"account_id":"act_999","level":"ad","since":"2025-01-01","until":"2025-01-31"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/insights/sync", strings.NewReader(body))
		rec := httptest.NewRecorder()

		SyncInsights(orchestrator).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"rows":42,"table":"fact_ad_insights"}`, rec.Body.String())
		assert.Equal(t, "act_999", orchestrator.gotReq.AccountID)
		assert.Equal(t, domain.LevelAd, orchestrator.gotReq.Level)
	})

	t.Run("Corpo inválido retorna 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/insights/sync", strings.NewReader("{invalido"))
		rec := httptest.NewRecorder()

		SyncInsights(&stubOrchestrator{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Conta ausente retorna 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/insights/sync", strings.NewReader(`{"level":"ad"}`))
		rec := httptest.NewRecorder()

		SyncInsights(&stubOrchestrator{}).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Data com formato inválido retorna 400 sem chamar o orquestrador", func(t *testing.T) {
		orchestrator := &stubOrchestrator{}

		body := `{"account_id":"act_999","since":"01/01/2025","until":"2025-01-31"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/insights/sync", strings.NewReader(body))
		rec := httptest.NewRecorder()

		SyncInsights(orchestrator).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, orchestrator.gotReq.AccountID)
	})

	t.Run("Falha da plataforma retorna 502", func(t *testing.T) {
		orchestrator := &stubOrchestrator{
			err: &domain.UpstreamError{Transient: true, Code: 17, Message: "limite de requisições"},
		}

		body := `{"account_id":"act_999"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/insights/sync", strings.NewReader(body))
		rec := httptest.NewRecorder()

		SyncInsights(orchestrator).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

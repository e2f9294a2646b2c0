package syncing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	repomocks "github.com/vfg2006/paid-social-sync/infrastructure/repository/mocks"
	"github.com/vfg2006/paid-social-sync/internal/domain"
	"github.com/vfg2006/paid-social-sync/internal/usecases/syncing/mocks"
	"go.uber.org/mock/gomock"
)

func newTestProcessor(
	fetcher InsightFetcher,
	factRepo *repomocks.MockInsightFactRepository,
	cfg ChunkProcessorConfig,
) (*ChunkProcessor, *[]time.Duration) {
	processor := NewChunkProcessor(fetcher, factRepo, NewRateLimiter(0), NewNormalizer(domain.PlatformMeta), cfg)

	var sleeps []time.Duration
	processor.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	return processor, &sleeps
}

func testChunk(t *testing.T) *domain.DateRange {
	t.Helper()
	dr := mustRange(t, "2025-01-01", "2025-01-07")
	return &dr
}

func rawPage(dates ...string) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(dates))
	for _, date := range dates {
		records = append(records, domain.RawRecord{
			"date_start":  date,
			"ad_id":       "333",
			"impressions": "10",
		})
	}
	return records
}

func TestChunkProcessor_ProcessChunk(t *testing.T) {
	t.Run("Sucesso na primeira tentativa grava o lote e retorna as linhas", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)

		fetcher.EXPECT().
			FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, query domain.FetchQuery, handler domain.PageHandler) error {
				assert.Equal(t, "act_999", query.AccountID)
				assert.Equal(t, domain.LevelAd, query.Level)
				return handler(rawPage("2025-01-01", "2025-01-02"))
			})

		factRepo.EXPECT().
			MergeInsights(gomock.Any(), gomock.Len(2)).
			Return(nil)

		processor, sleeps := newTestProcessor(fetcher, factRepo, ChunkProcessorConfig{Retries: 3})

		rows, err := processor.ProcessChunk(context.Background(), "act_999", domain.LevelAd, testChunk(t), "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), rows)
		assert.Empty(t, *sleeps)
	})

	t.Run("Falha transitória duas vezes e sucesso na terceira tentativa", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)

		transient := &domain.UpstreamError{Transient: true, Code: 17, Message: "limite de requisições"}

		gomock.InOrder(
			fetcher.EXPECT().FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).Return(transient),
			fetcher.EXPECT().FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).Return(transient),
			fetcher.EXPECT().FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ domain.FetchQuery, handler domain.PageHandler) error {
					return handler(rawPage("2025-01-01"))
				}),
		)

		factRepo.EXPECT().MergeInsights(gomock.Any(), gomock.Len(1)).Return(nil)

		processor, sleeps := newTestProcessor(fetcher, factRepo, ChunkProcessorConfig{
			Retries:      3,
			RetryBackoff: 2 * time.Second,
		})

		rows, err := processor.ProcessChunk(context.Background(), "act_999", domain.LevelAd, testChunk(t), "")
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
		assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, *sleeps)
	})

	t.Run("Esgotamento de retries aborta com o erro original encadeado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)

		transient := &domain.UpstreamError{Transient: true, Code: 2, Message: "serviço indisponível"}

		// retries=2 permite exatamente 3 tentativas no total
		fetcher.EXPECT().FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).Return(transient).Times(3)

		processor, sleeps := newTestProcessor(fetcher, factRepo, ChunkProcessorConfig{Retries: 2})

		_, err := processor.ProcessChunk(context.Background(), "act_999", domain.LevelAd, testChunk(t), "")
		require.Error(t, err)
		assert.True(t, domain.IsTransientUpstream(err))
		assert.Contains(t, err.Error(), "2025-01-01..2025-01-07")
		assert.Len(t, *sleeps, 2)
	})

	t.Run("Nível indisponível não é retentado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)

		unavailable := &domain.LevelUnavailableError{Level: domain.LevelAd, Code: 10, Message: "sem permissão"}
		fetcher.EXPECT().FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).Return(unavailable).Times(1)

		processor, sleeps := newTestProcessor(fetcher, factRepo, ChunkProcessorConfig{Retries: 3})

		_, err := processor.ProcessChunk(context.Background(), "act_999", domain.LevelAd, testChunk(t), "")
		assert.True(t, domain.IsLevelUnavailable(err))
		assert.Empty(t, *sleeps)
	})

	t.Run("Registro malformado aborta o chunk por padrão", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)

		fetcher.EXPECT().
			FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.FetchQuery, handler domain.PageHandler) error {
				return handler([]domain.RawRecord{{"impressions": "10"}})
			}).
			Times(4) // tentativa inicial + 3 retries

		processor, _ := newTestProcessor(fetcher, factRepo, ChunkProcessorConfig{Retries: 3})

		_, err := processor.ProcessChunk(context.Background(), "act_999", domain.LevelAd, testChunk(t), "")
		require.Error(t, err)
		assert.True(t, domain.IsMalformedRecord(err))
	})

	t.Run("Política de ignorar malformados preserva os registros válidos", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)

		fetcher.EXPECT().
			FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.FetchQuery, handler domain.PageHandler) error {
				page := append(rawPage("2025-01-01"), domain.RawRecord{"impressions": "10"})
				return handler(page)
			})

		factRepo.EXPECT().MergeInsights(gomock.Any(), gomock.Len(1)).Return(nil)

		processor, _ := newTestProcessor(fetcher, factRepo, ChunkProcessorConfig{Retries: 3, SkipMalformed: true})

		rows, err := processor.ProcessChunk(context.Background(), "act_999", domain.LevelAd, testChunk(t), "")
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("Chunk sem registros não toca o warehouse", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)

		fetcher.EXPECT().
			FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		processor, _ := newTestProcessor(fetcher, factRepo, ChunkProcessorConfig{Retries: 3})

		rows, err := processor.ProcessChunk(context.Background(), "act_999", domain.LevelAd, testChunk(t), "")
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})
}

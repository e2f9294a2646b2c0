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

// 16 de março de 2025, domingo
var testNow = time.Date(2025, 3, 16, 9, 30, 0, 0, time.UTC)

func newTestService(
	fetcher InsightFetcher,
	factRepo *repomocks.MockInsightFactRepository,
	fallbackEnabled bool,
) *Service {
	processor := NewChunkProcessor(fetcher, factRepo, NewRateLimiter(0), NewNormalizer(domain.PlatformMeta), ChunkProcessorConfig{
		Retries: 1,
	})
	processor.sleep = func(context.Context, time.Duration) error { return nil }

	return &Service{
		processor:       processor,
		factRepo:        factRepo,
		fallbackEnabled: fallbackEnabled,
		chunkDays:       7,
		thresholdDays:   7,
		now:             func() time.Time { return testNow },
	}
}

func expectFactTable(factRepo *repomocks.MockInsightFactRepository) {
	factRepo.EXPECT().EnsureFactTable(gomock.Any()).Return(nil)
	factRepo.EXPECT().Table().Return("fact_ad_insights").AnyTimes()
}

func levelQuery(level domain.Level) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		query, ok := x.(domain.FetchQuery)
		return ok && query.Level == level
	})
}

func TestService_Sync(t *testing.T) {
	t.Run("Conta obrigatória", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := newTestService(mocks.NewMockInsightFetcher(ctrl), repomocks.NewMockInsightFactRepository(ctrl), true)

		_, err := service.Sync(context.Background(), SyncRequest{})
		assert.Error(t, err)
	})

	t.Run("Datas explícitas prevalecem sobre o preset", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)
		expectFactTable(factRepo)

		fetcher.EXPECT().
			FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, query domain.FetchQuery, handler domain.PageHandler) error {
				require.NotNil(t, query.Range)
				assert.Equal(t, "2025-01-01..2025-01-05", query.Range.String())
				assert.Empty(t, query.Preset)
				return handler(rawPage("2025-01-01"))
			})

		factRepo.EXPECT().MergeInsights(gomock.Any(), gomock.Len(1)).Return(nil)

		service := newTestService(fetcher, factRepo, true)

		result, err := service.Sync(context.Background(), SyncRequest{
			AccountID: "act_999",
			Preset:    domain.DatePresetLast28d,
			Since:     "2025-01-01",
			Until:     "2025-01-05",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Rows)
		assert.Equal(t, "fact_ad_insights", result.Table)
	})

	t.Run("Preset desconhecido é rejeitado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := newTestService(mocks.NewMockInsightFetcher(ctrl), repomocks.NewMockInsightFactRepository(ctrl), true)

		_, err := service.Sync(context.Background(), SyncRequest{
			AccountID: "act_999",
			Preset:    "last_quarter",
		})
		assert.Error(t, err)
	})

	t.Run("Since sem until é rejeitado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := newTestService(mocks.NewMockInsightFetcher(ctrl), repomocks.NewMockInsightFactRepository(ctrl), true)

		_, err := service.Sync(context.Background(), SyncRequest{
			AccountID: "act_999",
			Since:     "2025-01-01",
		})
		assert.Error(t, err)
	})

	t.Run("Sem datas e sem preset o padrão é ontem", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)
		expectFactTable(factRepo)

		fetcher.EXPECT().
			FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, query domain.FetchQuery, _ domain.PageHandler) error {
				require.NotNil(t, query.Range)
				assert.Equal(t, "2025-03-15..2025-03-15", query.Range.String())
				return nil
			})

		service := newTestService(fetcher, factRepo, true)

		result, err := service.Sync(context.Background(), SyncRequest{AccountID: "act_999"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Rows)
	})

	t.Run("Preset lifetime vira um único chunk sem datas", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)
		expectFactTable(factRepo)

		fetcher.EXPECT().
			FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, query domain.FetchQuery, _ domain.PageHandler) error {
				assert.Nil(t, query.Range)
				assert.Equal(t, domain.DatePresetLifetime, query.Preset)
				return nil
			})

		service := newTestService(fetcher, factRepo, true)

		_, err := service.Sync(context.Background(), SyncRequest{
			AccountID: "act_999",
			Preset:    domain.DatePresetLifetime,
		})
		require.NoError(t, err)
	})

	t.Run("Fallback reprocessa o chunk que falhou e permanece no nível mais grosso", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)
		expectFactTable(factRepo)

		unavailable := &domain.LevelUnavailableError{Level: domain.LevelAd, Code: 10, Message: "sem permissão"}

		// Intervalo de 14 dias com chunks de 7 gera dois chunks. O primeiro
		// falha no nível ad, é reprocessado em adset e o segundo já roda
		// direto em adset.
		gomock.InOrder(
			fetcher.EXPECT().
				FetchInsights(gomock.Any(), levelQuery(domain.LevelAd), gomock.Any()).
				Return(unavailable),
			fetcher.EXPECT().
				FetchInsights(gomock.Any(), levelQuery(domain.LevelAdset), gomock.Any()).
				DoAndReturn(func(_ context.Context, query domain.FetchQuery, handler domain.PageHandler) error {
					assert.Equal(t, "2025-01-01..2025-01-07", query.Range.String())
					return handler(rawPage("2025-01-01"))
				}),
			fetcher.EXPECT().
				FetchInsights(gomock.Any(), levelQuery(domain.LevelAdset), gomock.Any()).
				DoAndReturn(func(_ context.Context, query domain.FetchQuery, handler domain.PageHandler) error {
					assert.Equal(t, "2025-01-08..2025-01-14", query.Range.String())
					return handler(rawPage("2025-01-08"))
				}),
		)

		factRepo.EXPECT().MergeInsights(gomock.Any(), gomock.Len(1)).Return(nil).Times(2)

		service := newTestService(fetcher, factRepo, true)

		result, err := service.Sync(context.Background(), SyncRequest{
			AccountID: "act_999",
			Level:     domain.LevelAd,
			Since:     "2025-01-01",
			Until:     "2025-01-14",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Rows)
	})

	t.Run("Fallback desabilitado propaga o erro de nível indisponível", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)
		expectFactTable(factRepo)

		unavailable := &domain.LevelUnavailableError{Level: domain.LevelAd, Code: 10, Message: "sem permissão"}
		fetcher.EXPECT().
			FetchInsights(gomock.Any(), levelQuery(domain.LevelAd), gomock.Any()).
			Return(unavailable)

		service := newTestService(fetcher, factRepo, false)

		_, err := service.Sync(context.Background(), SyncRequest{
			AccountID: "act_999",
			Since:     "2025-01-01",
			Until:     "2025-01-05",
		})
		assert.True(t, domain.IsLevelUnavailable(err))
	})

	t.Run("Cadeia de fallback esgotada propaga o erro", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)
		expectFactTable(factRepo)

		gomock.InOrder(
			fetcher.EXPECT().
				FetchInsights(gomock.Any(), levelQuery(domain.LevelAd), gomock.Any()).
				Return(&domain.LevelUnavailableError{Level: domain.LevelAd, Code: 10, Message: "sem permissão"}),
			fetcher.EXPECT().
				FetchInsights(gomock.Any(), levelQuery(domain.LevelAdset), gomock.Any()).
				Return(&domain.LevelUnavailableError{Level: domain.LevelAdset, Code: 10, Message: "sem permissão"}),
			fetcher.EXPECT().
				FetchInsights(gomock.Any(), levelQuery(domain.LevelCampaign), gomock.Any()).
				Return(&domain.LevelUnavailableError{Level: domain.LevelCampaign, Code: 10, Message: "sem permissão"}),
		)

		service := newTestService(fetcher, factRepo, true)

		_, err := service.Sync(context.Background(), SyncRequest{
			AccountID: "act_999",
			Since:     "2025-01-01",
			Until:     "2025-01-05",
		})
		assert.True(t, domain.IsLevelUnavailable(err))
	})

	t.Run("Níveis explícitos rodam de forma independente e acumulam linhas", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)
		expectFactTable(factRepo)

		fetcher.EXPECT().
			FetchInsights(gomock.Any(), levelQuery(domain.LevelCampaign), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.FetchQuery, handler domain.PageHandler) error {
				return handler(rawPage("2025-01-01"))
			})
		fetcher.EXPECT().
			FetchInsights(gomock.Any(), levelQuery(domain.LevelAdset), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.FetchQuery, handler domain.PageHandler) error {
				return handler(rawPage("2025-01-01", "2025-01-02"))
			})

		factRepo.EXPECT().MergeInsights(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		service := newTestService(fetcher, factRepo, true)

		result, err := service.Sync(context.Background(), SyncRequest{
			AccountID: "act_999",
			Levels:    []domain.Level{domain.LevelCampaign, domain.LevelAdset},
			Since:     "2025-01-01",
			Until:     "2025-01-05",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Rows)
	})

	t.Run("Cancelamento do contexto interrompe entre chunks", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		fetcher := mocks.NewMockInsightFetcher(ctrl)
		factRepo := repomocks.NewMockInsightFactRepository(ctrl)
		expectFactTable(factRepo)

		ctx, cancel := context.WithCancel(context.Background())

		fetcher.EXPECT().
			FetchInsights(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ domain.FetchQuery, _ domain.PageHandler) error {
				cancel()
				return nil
			})

		service := newTestService(fetcher, factRepo, true)

		_, err := service.Sync(ctx, SyncRequest{
			AccountID: "act_999",
			Since:     "2025-01-01",
			Until:     "2025-01-14",
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

package syncing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/paid-social-sync/internal/domain"
)

func mustRange(t *testing.T, since, until string) domain.DateRange {
	t.Helper()

	sinceDate, err := time.Parse(time.DateOnly, since)
	require.NoError(t, err)
	untilDate, err := time.Parse(time.DateOnly, until)
	require.NoError(t, err)

	dr, err := domain.NewDateRange(sinceDate, untilDate)
	require.NoError(t, err)
	return dr
}

func TestSplitDateRange(t *testing.T) {
	tests := []struct {
		name       string
		dateRange  domain.DateRange
		wantChunks []string
	}{
		{
			name:       "Intervalo até o limite vira um único chunk",
			dateRange:  mustRange(t, "2025-01-01", "2025-03-01"), // exatamente 60 dias
			wantChunks: []string{"2025-01-01..2025-03-01"},
		},
		{
			name:       "Intervalo curto não é fragmentado",
			dateRange:  mustRange(t, "2025-01-01", "2025-01-07"),
			wantChunks: []string{"2025-01-01..2025-01-07"},
		},
		{
			name:      "Intervalo acima do limite é fragmentado em chunks de 30 dias",
			dateRange: mustRange(t, "2025-01-01", "2025-03-15"), // 74 dias
			wantChunks: []string{
				"2025-01-01..2025-01-30",
				"2025-01-31..2025-03-01",
				"2025-03-02..2025-03-15",
			},
		},
		{
			name:      "Último chunk é recortado no fim do intervalo",
			dateRange: mustRange(t, "2025-01-01", "2025-03-02"), // 61 dias
			wantChunks: []string{
				"2025-01-01..2025-01-30",
				"2025-01-31..2025-03-01",
				"2025-03-02..2025-03-02",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitDateRange(tt.dateRange, DefaultFragmentThresholdDays, DefaultChunkDays)

			labels := make([]string, 0, len(chunks))
			for _, chunk := range chunks {
				labels = append(labels, chunk.String())
			}
			assert.Equal(t, tt.wantChunks, labels)
		})
	}
}

func TestSplitDateRange_CoberturaContigua(t *testing.T) {
	dr := mustRange(t, "2024-01-01", "2024-12-31") // ano bissexto, 366 dias

	chunks := SplitDateRange(dr, DefaultFragmentThresholdDays, DefaultChunkDays)
	require.NotEmpty(t, chunks)

	assert.Equal(t, dr.Since, chunks[0].Since)
	assert.Equal(t, dr.Until, chunks[len(chunks)-1].Until)

	totalDays := 0
	for i, chunk := range chunks {
		assert.False(t, chunk.Since.After(chunk.Until), "chunk %d com ordem invertida", i)
		if i > 0 {
			// Cada chunk começa exatamente um dia após o fim do anterior
			assert.Equal(t, chunks[i-1].Until.AddDate(0, 0, 1), chunk.Since)
		}
		totalDays += chunk.Days()
	}
	assert.Equal(t, dr.Days(), totalDays)
}

func TestSplitDateRange_Deterministico(t *testing.T) {
	dr := mustRange(t, "2025-01-01", "2025-06-30")

	first := SplitDateRange(dr, DefaultFragmentThresholdDays, DefaultChunkDays)
	second := SplitDateRange(dr, DefaultFragmentThresholdDays, DefaultChunkDays)

	assert.Equal(t, first, second)
}

package syncing

import (
	"github.com/vfg2006/paid-social-sync/internal/domain"
)

const (
	// DefaultChunkDays é o tamanho padrão de cada chunk em dias
	DefaultChunkDays = 30
	// DefaultFragmentThresholdDays é o limite a partir do qual o intervalo é fragmentado
	DefaultFragmentThresholdDays = 60
)

// SplitDateRange decompõe um intervalo de datas em chunks sequenciais,
// contíguos e sem sobreposição. Intervalos de até thresholdDays dias viram um
// único chunk igual ao intervalo original, evitando o custo de staging para
// períodos curtos. A decomposição é determinística: o retry idempotente
// depende de reprocessar exatamente os mesmos limites de chunk.
func SplitDateRange(dr domain.DateRange, thresholdDays, chunkDays int) []domain.DateRange {
	if thresholdDays <= 0 {
		thresholdDays = DefaultFragmentThresholdDays
	}
	if chunkDays <= 0 {
		chunkDays = DefaultChunkDays
	}

	if dr.Days() <= thresholdDays {
		return []domain.DateRange{dr}
	}

	chunks := make([]domain.DateRange, 0, dr.Days()/chunkDays+1)
	cursor := dr.Since
	for !cursor.After(dr.Until) {
		end := cursor.AddDate(0, 0, chunkDays-1)
		if end.After(dr.Until) {
			end = dr.Until
		}
		chunks = append(chunks, domain.DateRange{Since: cursor, Until: end})
		cursor = end.AddDate(0, 0, 1)
	}

	return chunks
}

package output

import (
	"context"
	"iter"

	"zungenrede/internal/domain/entities"
)

// PairCount is the number of entries stored for one language pair.
type PairCount struct {
	Pair  entities.LanguagePair
	Count int
}

// TranslationStore is the durable translation memory. Reads are served from
// memory; every mutation is durable before it returns nil.
type TranslationStore interface {
	Get(key string, pair entities.LanguagePair) (entities.TranslationEntry, bool)
	Put(ctx context.Context, entry entities.TranslationEntry) error
	Remove(ctx context.Context, key string, pair entities.LanguagePair) (bool, error)
	List(pair *entities.LanguagePair) iter.Seq[entities.TranslationEntry]
	Clear(ctx context.Context) (int, error)
	Stats() []PairCount
	Len() int
	Export() (data []byte, count int, err error)
}

package output

import (
	"context"

	"zungenrede/internal/domain/entities"
)

// TranslationMirror receives mutations after the store has committed them.
type TranslationMirror interface {
	Upsert(ctx context.Context, entry entities.TranslationEntry) error
	Delete(ctx context.Context, key string, pair entities.LanguagePair) error
	Truncate(ctx context.Context) error
	// Resync replaces the mirrored content with entries.
	Resync(ctx context.Context, entries []entities.TranslationEntry) error
}

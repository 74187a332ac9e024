package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"zungenrede/internal/domain/entities"
	"zungenrede/internal/ports/output"
)

var _ output.TranslationMirror = (*MirrorRepository)(nil)

const (
	upsertTranslation = `
INSERT INTO translations (source_lang, target_lang, key, value, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (source_lang, target_lang, key)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	deleteTranslation = `
DELETE FROM translations
WHERE source_lang = $1 AND target_lang = $2 AND key = $3`

	truncateTranslations = `TRUNCATE translations`
)

// DB is the part of *pgxpool.Pool the mirror needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// MirrorRepository replicates committed store mutations into the
// translations table. It is never read on the request path.
type MirrorRepository struct {
	db DB
}

func NewMirrorRepository(db DB) *MirrorRepository {
	return &MirrorRepository{db: db}
}

func (r *MirrorRepository) Upsert(ctx context.Context, e entities.TranslationEntry) error {
	if _, err := r.db.Exec(ctx, upsertTranslation, e.Pair.Source, e.Pair.Target, e.Key, e.Value); err != nil {
		return fmt.Errorf("upsert translation %q: %w", e.Key, err)
	}
	return nil
}

func (r *MirrorRepository) Delete(ctx context.Context, key string, pair entities.LanguagePair) error {
	if _, err := r.db.Exec(ctx, deleteTranslation, pair.Source, pair.Target, key); err != nil {
		return fmt.Errorf("delete translation %q: %w", key, err)
	}
	return nil
}

func (r *MirrorRepository) Truncate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, truncateTranslations); err != nil {
		return fmt.Errorf("truncate translations: %w", err)
	}
	return nil
}

// Resync replaces the mirrored rows with entries in one transaction. It runs
// at startup so that mutations missed while the database was unreachable
// do not linger.
func (r *MirrorRepository) Resync(ctx context.Context, entries []entities.TranslationEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin resync: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, truncateTranslations); err != nil {
		return fmt.Errorf("truncate translations: %w", err)
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(upsertTranslation, e.Pair.Source, e.Pair.Target, e.Key, e.Value)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert translations: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit resync: %w", err)
	}
	return nil
}

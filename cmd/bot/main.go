package main

import (
	"context"
	"errors"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"zungenrede/internal/adapters/discord"
	"zungenrede/internal/application"
	"zungenrede/internal/config"
	"zungenrede/internal/domain"
	"zungenrede/internal/infrastructure/database"
	"zungenrede/internal/infrastructure/i18n"
	"zungenrede/internal/infrastructure/storage"
	"zungenrede/internal/ports/output"
)

const mirrorStartupTimeout = 30 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.SetLevel(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		var corrupt *domain.CorruptStoreError
		if errors.As(err, &corrupt) {
			log.WithError(err).WithField("path", corrupt.Path).Fatal("refusing to start with a corrupt storage file")
		}
		log.WithError(err).Fatal("bot stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.StorageFile, storage.WithLogger(log.WithField("component", "storage")))
	if err != nil {
		return err
	}
	// Shutdown order: handlers drained by Start, then flush, then the pool.
	closeMirror := func() {}
	defer func() {
		if err := store.Flush(); err != nil {
			log.WithError(err).Error("final flush failed")
		}
		closeMirror()
	}()

	var mirror output.TranslationMirror
	if cfg.MirrorEnabled() {
		m, closePool, err := openMirror(ctx, cfg.DatabaseURL, store, log.WithField("component", "mirror"))
		if err != nil {
			return err
		}
		mirror, closeMirror = m, closePool
	}

	translator, err := i18n.NewTranslator(cfg.Locale, log.WithField("component", "i18n"))
	if err != nil {
		return err
	}

	gate := application.NewAccessGate(cfg.AllowedUsers)
	log.WithFields(logrus.Fields{
		"allowlist":       gate.Size(),
		"open":            gate.Open(),
		"authorize_reads": cfg.AuthorizeReads,
	}).Info("access gate configured")

	dispatcher := application.NewDispatcher(store, gate, translator, mirror, application.DispatcherConfig{
		Locale:         cfg.Locale,
		AuthorizeReads: cfg.AuthorizeReads,
	}, log.WithField("component", "dispatcher"))

	bot, err := discord.NewBot(cfg, dispatcher, log.WithField("component", "discord"))
	if err != nil {
		return err
	}
	return bot.Start(ctx)
}

// openMirror connects to Postgres, migrates the schema and copies the current
// store content into it.
func openMirror(ctx context.Context, dsn string, store *storage.Store, log logrus.FieldLogger) (output.TranslationMirror, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, mirrorStartupTimeout)
	defer cancel()

	if err := database.RunMigrations(dsn, log); err != nil {
		return nil, nil, err
	}
	pool, err := database.NewPool(ctx, dsn, log)
	if err != nil {
		return nil, nil, err
	}
	mirror := database.NewMirrorRepository(pool)
	if err := mirror.Resync(ctx, slices.Collect(store.List(nil))); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.WithField("entries", store.Len()).Info("mirror resynced")
	return mirror, pool.Close, nil
}

package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"zungenrede/internal/config"
	"zungenrede/internal/ports/input"
)

// Bot is the Discord adapter.
type Bot struct {
	session *discordgo.Session
	handler *Handler
	log     logrus.FieldLogger
}

// NewBot creates a Bot that forwards chat messages to messages.
func NewBot(cfg *config.Config, messages input.MessageHandler, log logrus.FieldLogger) (*Bot, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	// Handlers run on their own goroutines; messages are served concurrently.
	s.SyncEvents = false

	bot := &Bot{
		session: s,
		handler: NewHandler(messages, cfg.CommandPrefix, log),
		log:     log,
	}
	bot.setupHandlers()
	return bot, nil
}

func (b *Bot) setupHandlers() {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handler.HandleMessageCreate)
}

func (b *Bot) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.WithFields(logrus.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("discord session ready")
}

// Start runs the bot until ctx is done, then closes the gateway connection
// and waits for the messages still being handled. Those see a cancelled
// context.
func (b *Bot) Start(ctx context.Context) error {
	b.handler.setBaseContext(ctx)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	b.log.Info("bot online, press CTRL+C to quit")

	<-ctx.Done()

	b.log.Info("shutting down discord session")
	err := b.session.Close()
	b.handler.Wait()
	if err != nil {
		return fmt.Errorf("close discord session: %w", err)
	}
	return nil
}

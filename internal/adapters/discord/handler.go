package discord

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"zungenrede/internal/domain/entities"
	"zungenrede/internal/ports/input"
)

const requestTimeout = 15 * time.Second

// Handler turns gateway message events into MessageHandler calls.
type Handler struct {
	messages input.MessageHandler
	prefix   string
	log      logrus.FieldLogger
	base     atomic.Pointer[context.Context]
	inflight sync.WaitGroup
}

// NewHandler creates a Handler. Guild messages must start with prefix or a
// mention of the bot; direct messages are always handled.
func NewHandler(messages input.MessageHandler, prefix string, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		messages: messages,
		prefix:   prefix,
		log:      log,
	}
}

func (h *Handler) setBaseContext(ctx context.Context) {
	h.base.Store(&ctx)
}

// Wait blocks until every message being handled has been answered.
func (h *Handler) Wait() {
	h.inflight.Wait()
}

func (h *Handler) baseContext() context.Context {
	if ctx := h.base.Load(); ctx != nil {
		return *ctx
	}
	return context.Background()
}

// HandleMessageCreate is registered on the discordgo session.
func (h *Handler) HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	botID := ""
	if s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}
	h.handleMessage(s, botID, m.Message)
}

func (h *Handler) handleMessage(sender messageSender, botID string, m *discordgo.Message) {
	text, ok := commandText(m, botID, h.prefix)
	if !ok {
		return
	}
	h.inflight.Add(1)
	defer h.inflight.Done()
	log := h.log.WithFields(logrus.Fields{
		"channel": m.ChannelID,
		"user":    displayName(m),
	})

	principal, err := entities.ParsePrincipal(m.Author.ID)
	if err != nil {
		log.WithError(err).Warn("ignoring message with unparsable author id")
		return
	}

	ctx, cancel := context.WithTimeout(h.baseContext(), requestTimeout)
	defer cancel()

	reply := h.messages.OnMessage(ctx, principal, text)
	if reply.Empty() {
		return
	}
	if err := sendReply(sender, m, reply); err != nil {
		log.WithError(err).Error("send reply")
	}
}

// commandText extracts the command from m, or reports false when the bot
// should stay silent: messages from bots, and guild messages that neither
// start with prefix nor mention the bot first.
func commandText(m *discordgo.Message, botID, prefix string) (string, bool) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return "", false
	}
	if botID != "" && m.Author.ID == botID {
		return "", false
	}
	content := strings.TrimSpace(m.Content)
	if content == "" {
		return "", false
	}
	if m.GuildID == "" {
		return content, true
	}

	if botID != "" {
		for _, mention := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
			if rest, ok := strings.CutPrefix(content, mention); ok {
				return strings.TrimSpace(rest), true
			}
		}
	}
	if prefix != "" {
		if rest, ok := strings.CutPrefix(content, prefix); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

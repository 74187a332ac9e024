package discord

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"zungenrede/internal/domain/entities"
	"zungenrede/internal/ports/input"
)

const botID = "999"

type call struct {
	principal entities.Principal
	text      string
}

type stubMessages struct {
	mu    sync.Mutex
	calls []call
	reply input.Reply
}

func (s *stubMessages) OnMessage(_ context.Context, p entities.Principal, text string) input.Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{p, text})
	return s.reply
}

type recordingSender struct {
	sent []*discordgo.MessageSend
	err  error
}

func (r *recordingSender) ChannelMessageSendComplex(_ string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.sent = append(r.sent, data)
	return &discordgo.Message{}, nil
}

func message(guildID, authorID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "1",
		ChannelID: "c1",
		GuildID:   guildID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "anna"},
	}
}

func TestCommandText(t *testing.T) {
	tests := []struct {
		name string
		msg  *discordgo.Message
		want string
		ok   bool
	}{
		{"direct message", message("", "42", "  add de en hund dog "), "add de en hund dog", true},
		{"guild with prefix", message("g1", "42", "!lookup de en hund"), "lookup de en hund", true},
		{"guild with mention", message("g1", "42", "<@999> list"), "list", true},
		{"guild with nick mention", message("g1", "42", "<@!999> stats"), "stats", true},
		{"guild chatter", message("g1", "42", "hello there"), "", false},
		{"blank", message("", "42", "   "), "", false},
		{"own message", message("", botID, "help"), "", false},
		{"no author", &discordgo.Message{Content: "help"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := commandText(tt.msg, botID, "!")
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}

	bot := message("", "7", "help")
	bot.Author.Bot = true
	_, ok := commandText(bot, botID, "!")
	require.False(t, ok)
}

func TestHandleMessage_ForwardsAndReplies(t *testing.T) {
	log, _ := test.NewNullLogger()
	messages := &stubMessages{reply: input.Reply{Text: "Saved"}}
	h := NewHandler(messages, "!", log)
	sender := &recordingSender{}

	h.handleMessage(sender, botID, message("g1", "0042", "!add de en hund dog"))

	require.Equal(t, []call{{"42", "add de en hund dog"}}, messages.calls)
	require.Len(t, sender.sent, 1)
	require.Equal(t, "Saved", sender.sent[0].Content)
	require.NotNil(t, sender.sent[0].Reference)
	require.Equal(t, "1", sender.sent[0].Reference.MessageID)
}

func TestHandleMessage_IgnoredMessagesReachNothing(t *testing.T) {
	log, _ := test.NewNullLogger()
	messages := &stubMessages{reply: input.Reply{Text: "x"}}
	h := NewHandler(messages, "!", log)
	sender := &recordingSender{}

	h.handleMessage(sender, botID, message("g1", "42", "just chatting"))
	h.handleMessage(sender, botID, message("", "not-a-number", "help"))

	require.Empty(t, messages.calls)
	require.Empty(t, sender.sent)
}

func TestHandleMessage_EmptyReplySendsNothing(t *testing.T) {
	log, _ := test.NewNullLogger()
	h := NewHandler(&stubMessages{}, "!", log)
	sender := &recordingSender{}

	h.handleMessage(sender, botID, message("", "42", "help"))
	require.Empty(t, sender.sent)
}

func TestHandleMessage_SplitsLongRepliesAndAttaches(t *testing.T) {
	log, _ := test.NewNullLogger()
	long := strings.Repeat(strings.Repeat("a", 99)+"\n", 30)
	messages := &stubMessages{reply: input.Reply{
		Text:       long,
		Attachment: &input.Attachment{Name: "translations_storage.json", ContentType: "application/json", Data: []byte("[]\n")},
	}}
	h := NewHandler(messages, "!", log)
	sender := &recordingSender{}

	h.handleMessage(sender, botID, message("", "42", "export"))

	require.Len(t, sender.sent, 2)
	require.NotNil(t, sender.sent[0].Reference)
	require.Nil(t, sender.sent[1].Reference)
	require.Empty(t, sender.sent[0].Files)
	require.Len(t, sender.sent[1].Files, 1)

	f := sender.sent[1].Files[0]
	require.Equal(t, "translations_storage.json", f.Name)
	data, err := io.ReadAll(f.Reader)
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(data))
}

func TestHandleMessage_NoPartMentions(t *testing.T) {
	log, _ := test.NewNullLogger()
	long := strings.Repeat(strings.Repeat("b", 99)+"\n", 45) + "x = @everyone <@123> <@&456>"
	h := NewHandler(&stubMessages{reply: input.Reply{Text: long}}, "!", log)
	sender := &recordingSender{}

	h.handleMessage(sender, botID, message("g1", "42", "!list"))

	require.Len(t, sender.sent, 3)
	require.Contains(t, sender.sent[2].Content, "@everyone")
	for i, msg := range sender.sent {
		require.NotNil(t, msg.AllowedMentions, "part %d", i)
		require.Empty(t, msg.AllowedMentions.Parse, "part %d", i)
		require.Empty(t, msg.AllowedMentions.Users, "part %d", i)
		require.Empty(t, msg.AllowedMentions.Roles, "part %d", i)
	}
}

func TestHandleMessage_SendFailureIsLogged(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := NewHandler(&stubMessages{reply: input.Reply{Text: "hi"}}, "!", log)

	h.handleMessage(&recordingSender{err: errors.New("gateway down")}, botID, message("", "42", "help"))

	require.NotNil(t, hook.LastEntry())
	require.Equal(t, "send reply", hook.LastEntry().Message)
}

func TestHandleMessage_UsesBaseContext(t *testing.T) {
	log, _ := test.NewNullLogger()
	var seen context.Context
	h := NewHandler(handlerFunc(func(ctx context.Context, _ entities.Principal, _ string) input.Reply {
		seen = ctx
		return input.Reply{}
	}), "!", log)

	base, cancel := context.WithCancel(context.Background())
	h.setBaseContext(base)
	cancel()

	h.handleMessage(&recordingSender{}, botID, message("", "42", "help"))
	require.NotNil(t, seen)
	require.ErrorIs(t, seen.Err(), context.Canceled)
}

type handlerFunc func(ctx context.Context, p entities.Principal, text string) input.Reply

func (f handlerFunc) OnMessage(ctx context.Context, p entities.Principal, text string) input.Reply {
	return f(ctx, p, text)
}

func TestHandler_WaitDrainsInFlightMessages(t *testing.T) {
	log, _ := test.NewNullLogger()
	entered := make(chan struct{})
	release := make(chan struct{})
	h := NewHandler(handlerFunc(func(context.Context, entities.Principal, string) input.Reply {
		close(entered)
		<-release
		return input.Reply{Text: "done"}
	}), "!", log)
	sender := &recordingSender{}

	go h.handleMessage(sender, botID, message("", "42", "help"))
	<-entered

	drained := make(chan struct{})
	go func() {
		h.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		t.Fatal("Wait returned while a message was in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-drained:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after the message was answered")
	}
	require.Len(t, sender.sent, 1)
}

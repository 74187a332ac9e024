package discord

import (
	"bytes"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"zungenrede/internal/ports/input"
	pkgdiscord "zungenrede/pkg/discord"
)

type messageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Nick > GlobalName > Username
func displayName(m *discordgo.Message) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author == nil {
		return ""
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}

// sendReply posts reply to the channel of m, split into as many messages as
// the length limit requires. The first part answers m, the attachment rides
// on the last one.
func sendReply(s messageSender, m *discordgo.Message, reply input.Reply) error {
	parts := pkgdiscord.SplitMessage(reply.Text, pkgdiscord.MaxMessageLength)
	if len(parts) == 0 {
		parts = []string{""}
	}
	for i, part := range parts {
		// Replies echo stored text; no part may ping anyone.
		msg := &discordgo.MessageSend{
			Content:         part,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		}
		if i == 0 {
			msg.Reference = m.Reference()
		}
		if i == len(parts)-1 && reply.Attachment != nil {
			msg.Files = []*discordgo.File{{
				Name:        reply.Attachment.Name,
				ContentType: reply.Attachment.ContentType,
				Reader:      bytes.NewReader(reply.Attachment.Data),
			}}
		}
		if _, err := s.ChannelMessageSendComplex(m.ChannelID, msg); err != nil {
			return fmt.Errorf("send part %d/%d: %w", i+1, len(parts), err)
		}
	}
	return nil
}

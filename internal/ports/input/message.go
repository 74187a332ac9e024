package input

import (
	"context"

	"zungenrede/internal/domain/entities"
)

// Attachment is a file sent along with a reply.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Reply is what the channel adapter posts back. An empty Text and nil
// Attachment means nothing should be sent.
type Reply struct {
	Text       string
	Attachment *Attachment
}

// Empty reports whether there is nothing to send.
func (r Reply) Empty() bool {
	return r.Text == "" && r.Attachment == nil
}

// MessageHandler is the only entry point the channel adapter uses.
type MessageHandler interface {
	OnMessage(ctx context.Context, principal entities.Principal, text string) Reply
}

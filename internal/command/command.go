// Package command holds the transport-agnostic command core: descriptors,
// the alias registry, invocations and middleware.
package command

import "context"

// Message is an inbound chat message as the dispatcher sees it.
type Message struct {
	ID         string
	ChannelID  string
	GuildID    string
	AuthorID   string
	AuthorName string
	Content    string
	// Mentioned is set when the message mentions the bot.
	Mentioned bool
}

// Invocation is one resolved command call.
type Invocation struct {
	Command *Descriptor
	Args    []string
	Message *Message
}

// Handler runs a command body.
type Handler func(ctx context.Context, inv *Invocation) error

// Middleware wraps a handler (logging, preconditions).
type Middleware func(Handler) Handler

// Apply wraps h so that the first middleware in the list runs first.
func Apply(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Package provider contains the outbound channel adapters. One campaign
// dispatch maps to one SendBulk call; partial per-recipient failure inside a
// bulk call is not tracked, the provider-level result is the outcome.
package provider

import "context"

// Message is one rendered per-recipient payload. Subject is only set for
// email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Result is the provider-level outcome of one bulk call.
type Result struct {
	RequestID string
	Accepted  int
}

// Sender dispatches all messages for one campaign in a single call. Any
// returned error is a whole-dispatch failure.
type Sender interface {
	SendBulk(ctx context.Context, messages []Message) (*Result, error)
}

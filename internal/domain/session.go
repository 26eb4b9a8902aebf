package domain

import "time"

// Message roles. Messages are append-only; nothing in the service updates or
// deletes a message once written.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatSession is the durable record of one conversation. The service creates
// sessions and bumps LastActive by appending messages; it never deletes them.
type ChatSession struct {
	ID         string
	Name       string
	Language   string
	UserID     string
	CreatedAt  time.Time
	LastActive time.Time
}

// ChatMessage is a single persisted conversation turn half.
// UserID attributes the exchange to a site account when one was given.
// Tone and Length are set on assistant messages only. AudioRef marks that a
// synthesized audio artifact was delivered with the reply.
type ChatMessage struct {
	ID        string
	SessionID string
	UserID    string
	Role      string
	Text      string
	Tone      string
	Length    string
	AudioRef  string
	CreatedAt time.Time
}

package models

// Role attributes a chat turn to its author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleError marks a failed generation. Failures stay in the log as
	// visible turns; they are never silently dropped.
	RoleError Role = "error"
)

// Turn is one entry in a chat session's conversation log. Turns are
// append-only: replaying them in order reconstructs the visible
// conversation exactly.
type Turn struct {
	Role Role
	Text string
}

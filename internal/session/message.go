// Package session implements the chat session protocol between a chat view
// and the command gateway: a state machine owning an append-only turn log
// and the message exchange that feeds it.
package session

// Kind tags a protocol message.
type Kind int

const (
	// KindSendMessage travels view -> bridge.
	KindSendMessage Kind = iota
	// KindResponse travels bridge -> view on a successful generation.
	KindResponse
	// KindErrorNotice travels bridge -> view on a failed generation.
	KindErrorNotice
)

func (k Kind) String() string {
	switch k {
	case KindSendMessage:
		return "send"
	case KindResponse:
		return "response"
	case KindErrorNotice:
		return "error"
	default:
		return "unknown"
	}
}

// Message is the protocol unit between the chat view and the bridge. Each
// message is self-contained; there are no sequence numbers, ordering is
// whatever the carrying channel delivers.
type Message struct {
	Kind Kind
	Text string
}

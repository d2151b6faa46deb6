package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/tiago/llamactl/internal/errors"
	"github.com/tiago/llamactl/internal/models"
	"github.com/tiago/llamactl/internal/runner"
)

// State is the lifecycle position of a session.
type State int

const (
	// StateCreated: the user asked for a chat, nothing shown yet.
	StateCreated State = iota
	// StateAwaitingName: waiting for the user to pick a model.
	StateAwaitingName
	// StateOpen: bound to a model, exchanging messages.
	StateOpen
	// StateClosed: terminal. No messages are accepted.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateAwaitingName:
		return "awaiting-name"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// completion is one finished generation flowing back into the event loop.
type completion struct {
	turn models.Turn
	msg  Message
}

// Session owns one chat conversation bound to one model. The turn log is
// append-only: user turns are appended the moment a send is accepted,
// assistant and error turns when their generation completes. Nothing is
// ever edited or dropped; a failure becomes a visible error turn.
//
// Sends are not serialized. Any number of generations may be in flight at
// once; each completion is delivered whenever its own gateway call
// finishes, so responses can arrive out of send order. The outbound
// channel itself delivers in order of completion.
type Session struct {
	id      string
	gateway runner.Runner

	mu      sync.Mutex
	state   State
	model   string
	turns   []models.Turn
	pending int

	completions chan completion
	outbound    chan Message
	closed      chan struct{}
	closeOnce   sync.Once
}

// New creates a session in the Created state. Nothing runs until Start.
func New(gateway runner.Runner) *Session {
	return &Session{
		id:          uuid.NewString(),
		gateway:     gateway,
		state:       StateCreated,
		completions: make(chan completion),
		outbound:    make(chan Message, 32),
		closed:      make(chan struct{}),
	}
}

// ID returns the session identity.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Model returns the model name the session is bound to, empty before Open.
func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Pending returns the number of generations still in flight.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Turns returns a snapshot of the conversation log.
func (s *Session) Turns() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Outbound is the bridge -> view channel carrying Response and ErrorNotice
// messages, in completion order.
func (s *Session) Outbound() <-chan Message {
	return s.outbound
}

// Done is closed once the session reaches Closed. Receivers waiting on
// Outbound should select on it so they unblock at shutdown.
func (s *Session) Done() <-chan struct{} {
	return s.closed
}

// Start moves Created -> AwaitingName: the view should now ask the user
// for a model name.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCreated {
		return stateError(s.state)
	}
	s.state = StateAwaitingName
	return nil
}

// Bind moves AwaitingName -> Open, fixing the model for the session's
// lifetime, and starts the event loop. An empty name is a missing input,
// not a bind.
func (s *Session) Bind(model string) error {
	if model == "" {
		return apperrors.NewMissingInputError("model name")
	}
	s.mu.Lock()
	if s.state != StateAwaitingName {
		defer s.mu.Unlock()
		return stateError(s.state)
	}
	s.state = StateOpen
	s.model = model
	s.mu.Unlock()

	go s.loop()
	return nil
}

// Cancel handles the user dismissing the model prompt: AwaitingName (or
// Created) goes straight to Closed. No view is opened, no process spawned.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state == StateCreated || s.state == StateAwaitingName {
		s.state = StateClosed
	}
	s.mu.Unlock()
	s.closeOnce.Do(func() { close(s.closed) })
}

// Close disposes the session from any state. Terminal.
func (s *Session) Close() {
	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()
	s.closeOnce.Do(func() { close(s.closed) })
}

// Post accepts one protocol message from the view. Only SendMessage is
// inbound; anything else is a protocol violation by the caller.
func (s *Session) Post(msg Message) error {
	if msg.Kind != KindSendMessage {
		return fmt.Errorf("session: inbound messages must be %s, got %s", KindSendMessage, msg.Kind)
	}
	return s.Send(msg.Text)
}

// Send accepts one user message. The user turn is appended before Send
// returns, so the view reflects the input without waiting on the runner;
// the generation itself runs on its own goroutine and reports back through
// Outbound whenever it completes.
func (s *Session) Send(text string) error {
	if text == "" {
		return apperrors.NewMissingInputError("message text")
	}

	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return apperrors.ErrSessionClosed
	}
	s.turns = append(s.turns, models.Turn{Role: models.RoleUser, Text: text})
	s.pending++
	model := s.model
	s.mu.Unlock()

	go s.dispatch(model, text)
	return nil
}

// dispatch runs one generation to completion and hands the result to the
// event loop. If the session closes first, the result is discarded.
func (s *Session) dispatch(model, text string) {
	out, err := s.gateway.Execute(context.Background(), runner.Generate(model, text))

	var c completion
	if err != nil {
		c = completion{
			turn: models.Turn{Role: models.RoleError, Text: err.Error()},
			msg:  Message{Kind: KindErrorNotice, Text: err.Error()},
		}
	} else {
		c = completion{
			turn: models.Turn{Role: models.RoleAssistant, Text: out},
			msg:  Message{Kind: KindResponse, Text: out},
		}
	}

	select {
	case s.completions <- c:
	case <-s.closed:
	}
}

// loop is the session's event loop: it serializes completion handling so
// result turns are appended by a single goroutine and outbound messages go
// out in completion order.
func (s *Session) loop() {
	for {
		select {
		case c := <-s.completions:
			s.mu.Lock()
			s.turns = append(s.turns, c.turn)
			if s.pending > 0 {
				s.pending--
			}
			s.mu.Unlock()

			select {
			case s.outbound <- c.msg:
			case <-s.closed:
				return
			}
		case <-s.closed:
			return
		}
	}
}

func stateError(s State) error {
	return &stateErr{state: s}
}

type stateErr struct {
	state State
}

func (e *stateErr) Error() string {
	return "invalid session state: " + e.state.String()
}

func (e *stateErr) Is(target error) bool {
	if target == apperrors.ErrSessionClosed {
		return e.state == StateClosed
	}
	_, ok := target.(*stateErr)
	return ok
}

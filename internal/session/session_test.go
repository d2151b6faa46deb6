package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "github.com/tiago/llamactl/internal/errors"
	"github.com/tiago/llamactl/internal/models"
	"github.com/tiago/llamactl/internal/runner"
)

func openSession(t *testing.T, mock *runner.MockRunner) *Session {
	t.Helper()
	s := New(mock)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Bind("tinyllama"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func recvMessage(t *testing.T, s *Session) Message {
	t.Helper()
	select {
	case msg := <-s.Outbound():
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for outbound message")
		return Message{}
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	s := New(&runner.MockRunner{})
	if s.State() != StateCreated {
		t.Fatalf("new session state = %v, want created", s.State())
	}
	if s.ID() == "" {
		t.Error("session must carry an identity")
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.State() != StateAwaitingName {
		t.Fatalf("state after Start = %v, want awaiting-name", s.State())
	}

	if err := s.Bind("phi-2"); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if s.State() != StateOpen {
		t.Fatalf("state after Bind = %v, want open", s.State())
	}
	if s.Model() != "phi-2" {
		t.Errorf("model = %q, want phi-2", s.Model())
	}
	if len(s.Turns()) != 0 {
		t.Error("a freshly opened session must present an empty turn log")
	}

	s.Close()
	if s.State() != StateClosed {
		t.Fatalf("state after Close = %v, want closed", s.State())
	}
}

func TestCancel_SkipsOpenEntirely(t *testing.T) {
	mock := &runner.MockRunner{}
	s := New(mock)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	s.Cancel()

	if s.State() != StateClosed {
		t.Fatalf("cancelled session state = %v, want closed", s.State())
	}
	if mock.CallCount() != 0 {
		t.Error("cancelling the name prompt must not spawn any process")
	}
	if err := s.Send("hello"); !errors.Is(err, apperrors.ErrSessionClosed) {
		t.Errorf("send after cancel = %v, want ErrSessionClosed", err)
	}
}

func TestBind_EmptyNameIsMissingInput(t *testing.T) {
	s := New(&runner.MockRunner{})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	err := s.Bind("")
	if !apperrors.IsMissingInput(err) {
		t.Fatalf("Bind(\"\") = %v, want missing input", err)
	}
	if s.State() != StateAwaitingName {
		t.Error("failed bind must leave the session awaiting a name")
	}
}

func TestBind_RequiresAwaitingName(t *testing.T) {
	s := New(&runner.MockRunner{})
	if err := s.Bind("m"); err == nil {
		t.Error("Bind before Start must fail")
	}

	s2 := openSession(t, &runner.MockRunner{})
	if err := s2.Bind("other"); err == nil {
		t.Error("Bind on an open session must fail")
	}
}

func TestSend_AppendsUserTurnImmediately(t *testing.T) {
	block := make(chan struct{})
	mock := &runner.MockRunner{
		ExecuteFn: func(ctx context.Context, op runner.Operation) (string, error) {
			<-block
			return "answer", nil
		},
	}
	s := openSession(t, mock)

	if err := s.Send("question"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	// The user turn must be visible before the generation resolves.
	turns := s.Turns()
	if len(turns) != 1 || turns[0].Role != models.RoleUser || turns[0].Text != "question" {
		t.Fatalf("turns after send = %+v, want one user turn", turns)
	}
	if s.Pending() != 1 {
		t.Errorf("pending = %d, want 1", s.Pending())
	}

	close(block)
	msg := recvMessage(t, s)
	if msg.Kind != KindResponse || msg.Text != "answer" {
		t.Fatalf("outbound = %+v, want response 'answer'", msg)
	}

	turns = s.Turns()
	if len(turns) != 2 || turns[1].Role != models.RoleAssistant || turns[1].Text != "answer" {
		t.Fatalf("turns after completion = %+v", turns)
	}
	if s.Pending() != 0 {
		t.Errorf("pending after completion = %d, want 0", s.Pending())
	}
}

func TestSend_FailureBecomesErrorTurn(t *testing.T) {
	mock := &runner.MockRunner{
		Err: apperrors.NewGatewayError(apperrors.NewExitError(1, "model not found")),
	}
	s := openSession(t, mock)

	if err := s.Send("hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	msg := recvMessage(t, s)
	if msg.Kind != KindErrorNotice {
		t.Fatalf("outbound kind = %v, want error notice", msg.Kind)
	}
	if msg.Text == "" {
		t.Error("error notice must carry a message")
	}

	turns := s.Turns()
	if len(turns) != 2 || turns[1].Role != models.RoleError {
		t.Fatalf("turns = %+v, want user + error", turns)
	}

	// A failed turn never closes the session; the user may retry.
	if s.State() != StateOpen {
		t.Error("session must stay open after a failed generation")
	}
	if err := s.Send("retry"); err != nil {
		t.Errorf("retry after failure: %v", err)
	}
	recvMessage(t, s)
}

func TestSend_EmptyText(t *testing.T) {
	s := openSession(t, &runner.MockRunner{})
	if err := s.Send(""); !apperrors.IsMissingInput(err) {
		t.Errorf("Send(\"\") = %v, want missing input", err)
	}
}

func TestTurnAccounting_MixedResults(t *testing.T) {
	// Property: after N sends all resolved, exactly N user turns and N
	// assistant-or-error turns, regardless of the success/failure mix.
	const n = 8
	var calls int
	var mu sync.Mutex
	mock := &runner.MockRunner{
		ExecuteFn: func(ctx context.Context, op runner.Operation) (string, error) {
			mu.Lock()
			calls++
			i := calls
			mu.Unlock()
			if i%3 == 0 {
				return "", apperrors.NewGatewayError(apperrors.NewExitError(1, "boom"))
			}
			return "ok", nil
		},
	}
	s := openSession(t, mock)

	for i := 0; i < n; i++ {
		if err := s.Send(fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	for i := 0; i < n; i++ {
		recvMessage(t, s)
	}

	var users, results int
	for _, turn := range s.Turns() {
		switch turn.Role {
		case models.RoleUser:
			users++
		case models.RoleAssistant, models.RoleError:
			results++
		}
	}
	if users != n || results != n {
		t.Errorf("turns: %d user, %d results, want %d/%d", users, results, n, n)
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d after all resolved", s.Pending())
	}
}

func TestConcurrentSends_DoNotSerialize(t *testing.T) {
	// The first generation stalls; a later one must still complete and be
	// delivered first. Out-of-order delivery is the documented behavior.
	first := make(chan struct{})
	mock := &runner.MockRunner{
		ExecuteFn: func(ctx context.Context, op runner.Operation) (string, error) {
			if op.Prompt() == "slow" {
				<-first
				return "slow answer", nil
			}
			return "fast answer", nil
		},
	}
	s := openSession(t, mock)

	if err := s.Send("slow"); err != nil {
		t.Fatal(err)
	}
	if err := s.Send("fast"); err != nil {
		t.Fatal(err)
	}

	msg := recvMessage(t, s)
	if msg.Text != "fast answer" {
		t.Fatalf("first delivery = %q, want the fast completion", msg.Text)
	}
	close(first)
	msg = recvMessage(t, s)
	if msg.Text != "slow answer" {
		t.Fatalf("second delivery = %q, want the slow completion", msg.Text)
	}
}

func TestClose_DiscardsLateCompletions(t *testing.T) {
	release := make(chan struct{})
	mock := &runner.MockRunner{
		ExecuteFn: func(ctx context.Context, op runner.Operation) (string, error) {
			<-release
			return "late", nil
		},
	}
	s := openSession(t, mock)

	if err := s.Send("hello"); err != nil {
		t.Fatal(err)
	}
	s.Close()
	close(release)

	// The dispatch goroutine must not hang or panic; give it a moment.
	time.Sleep(50 * time.Millisecond)
	if s.State() != StateClosed {
		t.Error("session must stay closed")
	}
}

func TestDone_ClosedOnClose(t *testing.T) {
	s := openSession(t, &runner.MockRunner{})

	select {
	case <-s.Done():
		t.Fatal("Done must stay open while the session is open")
	default:
	}

	s.Close()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Close")
	}
}

func TestPost_Protocol(t *testing.T) {
	s := openSession(t, &runner.MockRunner{Output: "pong"})

	if err := s.Post(Message{Kind: KindSendMessage, Text: "ping"}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	msg := recvMessage(t, s)
	if msg.Kind != KindResponse || msg.Text != "pong" {
		t.Fatalf("outbound = %+v", msg)
	}

	if err := s.Post(Message{Kind: KindResponse, Text: "bogus"}); err == nil {
		t.Error("posting an outbound kind inbound must fail")
	}
}

func TestKindString(t *testing.T) {
	if KindSendMessage.String() != "send" || KindResponse.String() != "response" || KindErrorNotice.String() != "error" {
		t.Error("kind names changed")
	}
}

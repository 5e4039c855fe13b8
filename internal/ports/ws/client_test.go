package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"hexbot/internal/codec"
	"hexbot/internal/domain"
	"hexbot/internal/logging"

	"github.com/gorilla/websocket"
)

type recordingQueue struct {
	mu   sync.Mutex
	msgs []domain.Message
	got  chan struct{}
}

func (q *recordingQueue) Put(ctx context.Context, msg domain.Message) error {
	q.mu.Lock()
	q.msgs = append(q.msgs, msg)
	q.mu.Unlock()
	q.got <- struct{}{}
	return nil
}

// gameServer pushes frames to the first client and records the requests it receives.
type gameServer struct {
	push     [][]byte
	auth     chan string
	requests chan domain.Request
}

func (s *gameServer) handle(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	s.auth <- r.Header.Get("Authorization")

	for _, frame := range s.push {
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		op, data, err := codec.Unframe(frame)
		if err != nil {
			continue
		}
		if _, req, err := codec.DecodeRequest(op, data); err == nil {
			s.requests <- req
		}
	}
}

func mustFrame(t *testing.T, seat int, msg domain.Message) []byte {
	t.Helper()
	op, data, err := codec.EncodeMessage(seat, msg)
	if err != nil {
		t.Fatalf("encode %s: %v", msg.Name(), err)
	}
	return codec.Frame(op, data)
}

func TestClientRoutesMessagesForItsSeat(t *testing.T) {
	srv := &gameServer{
		push: [][]byte{
			mustFrame(t, 2, domain.DiscardRequest{Count: 4}),
			mustFrame(t, domain.NoSeat, domain.Turn{Seat: 0}),
			{0xff},
			mustFrame(t, 1, domain.DiscardRequest{Count: 3}),
		},
		auth:     make(chan string, 1),
		requests: make(chan domain.Request, 1),
	}
	ts := httptest.NewServer(http.HandlerFunc(srv.handle))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	client, err := Dial(ctx, url, "tok", 1, logging.Nop())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	if got := <-srv.auth; got != "Bearer tok" {
		t.Fatalf("Authorization = %q, want bearer token", got)
	}

	q := &recordingQueue{got: make(chan struct{}, 4)}
	done := make(chan error, 1)
	go func() { done <- client.ReadLoop(ctx, q) }()

	for i := 0; i < 2; i++ {
		select {
		case <-q.got:
		case <-ctx.Done():
			t.Fatal("timed out waiting for messages")
		}
	}
	q.mu.Lock()
	if len(q.msgs) != 2 {
		t.Fatalf("expected 2 messages for seat 1, got %d", len(q.msgs))
	}
	if _, ok := q.msgs[0].(domain.Turn); !ok {
		t.Fatalf("expected broadcast turn first, got %T", q.msgs[0])
	}
	if d, ok := q.msgs[1].(domain.DiscardRequest); !ok || d.Count != 3 {
		t.Fatalf("expected our discard request, got %+v", q.msgs[1])
	}
	q.mu.Unlock()

	if err := client.Send(ctx, domain.MoveRobber{Hex: 7}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case req := <-srv.requests:
		if mr, ok := req.(domain.MoveRobber); !ok || mr.Hex != 7 {
			t.Fatalf("server got %+v, want MoveRobber{7}", req)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for request")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("ReadLoop after cancel = %v, want nil", err)
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	srv := &gameServer{auth: make(chan string, 1), requests: make(chan domain.Request, 1)}
	ts := httptest.NewServer(http.HandlerFunc(srv.handle))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	client, err := Dial(context.Background(), url, "", 0, logging.Nop())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
	if err := client.Send(context.Background(), domain.EndTurn{}); err != ErrClosed {
		t.Fatalf("Send after Close = %v, want ErrClosed", err)
	}
}

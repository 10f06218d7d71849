package pubsub

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/danmuck/colonies/internal/auth"
	"github.com/danmuck/colonies/internal/testutil/fakeserver"
	"github.com/danmuck/colonies/internal/testutil/testlog"
	"github.com/danmuck/colonies/internal/testutil/tlstest"
	"github.com/danmuck/colonies/pkg/crypto"
	"github.com/danmuck/colonies/pkg/rpc"
)

const (
	testPrvKey      = "ddf7f7791208083b6a9ed975a72684f6406a269cfa36f1b1c32045c0a71fff05"
	subscribeMsgTyp = "subscribeprocessesmsg"
)

type subscribeMsg struct {
	MsgType string `json:"msgtype"`
	Timeout int    `json:"timeout"`
}

type record struct {
	ID int `json:"id"`
}

func newRequest(timeout time.Duration) Request {
	return Request{
		PayloadType: subscribeMsgTyp,
		Msg:         subscribeMsg{MsgType: subscribeMsgTyp, Timeout: int(timeout.Seconds())},
		PrvKey:      testPrvKey,
		Timeout:     timeout,
	}
}

func newClient(t *testing.T, srv *fakeserver.Server) *rpc.Client {
	t.Helper()
	c, err := rpc.New(srv.Config())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func twoBatchesThenClose(_ rpc.Verified, stream *fakeserver.Stream) {
	_ = stream.Send([]record{{ID: 1}, {ID: 2}})
	_ = stream.Send([]record{{ID: 3}})
	_ = stream.Close()
	stream.Wait(2 * time.Second)
}

func TestConsumerStopKeepsOnlyFirstBatch(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.HandleStream(subscribeMsgTyp, twoBatchesThenClose)

	calls := 0
	result, err := Subscribe[record](context.Background(), newClient(t, srv), newRequest(time.Second), func(batch []record) bool {
		calls++
		return false
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if calls != 1 {
		t.Fatalf("consumer calls=%d want 1", calls)
	}
	if len(result.Records) != 2 || result.Records[0].ID != 1 || result.Records[1].ID != 2 {
		t.Fatalf("records=%+v want first batch only", result.Records)
	}
	if result.Termination != TerminationDrained {
		t.Fatalf("termination=%v want drained", result.Termination)
	}
}

func TestServerCloseReturnsAllBatches(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.HandleStream(subscribeMsgTyp, twoBatchesThenClose)

	var sizes []int
	result, err := Subscribe[record](context.Background(), newClient(t, srv), newRequest(time.Second), func(batch []record) bool {
		sizes = append(sizes, len(batch))
		return true
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("records=%+v want 3", result.Records)
	}
	if len(sizes) != 2 || sizes[0] != 2 || sizes[1] != 1 {
		t.Fatalf("batch sizes=%v", sizes)
	}
	if result.Termination != TerminationClosed {
		t.Fatalf("termination=%v want closed", result.Termination)
	}
}

func TestEmptyBatchClosesWithoutError(t *testing.T) {
	testlog.Start(t)
	for name, payload := range map[string]any{"empty array": []record{}, "null": nil} {
		t.Run(name, func(t *testing.T) {
			srv := fakeserver.New(t)
			srv.HandleStream(subscribeMsgTyp, func(_ rpc.Verified, stream *fakeserver.Stream) {
				_ = stream.Send([]record{{ID: 7}})
				_ = stream.Send(payload)
				stream.Wait(2 * time.Second)
			})

			result, err := Subscribe[record](context.Background(), newClient(t, srv), newRequest(time.Second), nil)
			if err != nil {
				t.Fatalf("subscribe: %v", err)
			}
			if len(result.Records) != 1 || result.Records[0].ID != 7 {
				t.Fatalf("records=%+v", result.Records)
			}
			if result.Termination != TerminationClosed {
				t.Fatalf("termination=%v want closed", result.Termination)
			}
		})
	}
}

func TestDeadlineReturnsAccumulatedRecords(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.HandleStream(subscribeMsgTyp, func(_ rpc.Verified, stream *fakeserver.Stream) {
		_ = stream.Send(record{ID: 42})
		stream.Wait(5 * time.Second)
	})

	start := time.Now()
	result, err := Subscribe[record](context.Background(), newClient(t, srv), newRequest(200*time.Millisecond), nil)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("deadline not enforced, elapsed=%v", elapsed)
	}
	if len(result.Records) != 1 || result.Records[0].ID != 42 {
		t.Fatalf("records=%+v", result.Records)
	}
	if result.Termination != TerminationTimedOut {
		t.Fatalf("termination=%v want timed out", result.Termination)
	}
}

func TestErrorFrameIsApplicationError(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.HandleStream(subscribeMsgTyp, func(_ rpc.Verified, stream *fakeserver.Stream) {
		_ = stream.Send([]record{{ID: 1}})
		_ = stream.Fail(http.StatusForbidden, "not a member of colony")
	})

	result, err := Subscribe[record](context.Background(), newClient(t, srv), newRequest(time.Second), nil)
	if !rpc.IsApplicationError(err) {
		t.Fatalf("expected application error, got %v", err)
	}
	if err.Error() != "not a member of colony" {
		t.Fatalf("message=%q", err.Error())
	}
	if len(result.Records) != 1 {
		t.Fatalf("records before failure=%+v", result.Records)
	}
}

func TestDroppedConnectionAfterBatchIsConnectionError(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.HandleStream(subscribeMsgTyp, func(_ rpc.Verified, stream *fakeserver.Stream) {
		_ = stream.Send([]record{{ID: 5}})
		time.Sleep(50 * time.Millisecond)
		_ = stream.Drop()
	})

	result, err := Subscribe[record](context.Background(), newClient(t, srv), newRequest(time.Second), nil)
	if !rpc.IsConnectionError(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].ID != 5 {
		t.Fatalf("records before drop=%+v", result.Records)
	}
}

func TestUnauthorizedSignerRejected(t *testing.T) {
	testlog.Start(t)
	other, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	otherID, err := crypto.GenerateID(other)
	if err != nil {
		t.Fatalf("generate id: %v", err)
	}
	srv := fakeserver.New(t)
	srv.Require(subscribeMsgTyp, auth.StaticIdentity{ID: otherID})
	srv.HandleStream(subscribeMsgTyp, twoBatchesThenClose)

	_, err = Subscribe[record](context.Background(), newClient(t, srv), newRequest(time.Second), nil)
	var rpcErr *rpc.Error
	if !errors.As(err, &rpcErr) || rpcErr.Kind != rpc.KindApplication || rpcErr.Status != http.StatusForbidden {
		t.Fatalf("expected 403 application error, got %v", err)
	}
}

func TestUnreachableStreamIsConnectionError(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c, err := rpc.New(rpc.Config{ServerURL: "http://" + addr + "/api"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = Subscribe[record](context.Background(), c, newRequest(time.Second), nil)
	if !rpc.IsConnectionError(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestCancelWhileListeningIsConnectionError(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.HandleStream(subscribeMsgTyp, func(_ rpc.Verified, stream *fakeserver.Stream) {
		stream.Wait(5 * time.Second)
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)
	_, err := Subscribe[record](ctx, newClient(t, srv), newRequest(5*time.Second), nil)
	if !rpc.IsConnectionError(err) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled connection error, got %v", err)
	}
}

func TestSessionStatesAndBatchesIterator(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	srv.HandleStream(subscribeMsgTyp, twoBatchesThenClose)

	ctx := context.Background()
	s, err := Dial(ctx, newClient(t, srv), newRequest(time.Second))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer s.Close()
	if s.State() != StateListening {
		t.Fatalf("state after dial=%v", s.State())
	}

	seen := 0
	for batch, err := range s.Batches(ctx) {
		if err != nil {
			t.Fatalf("batch: %v", err)
		}
		seen += len(batch)
		break
	}
	if seen != 2 {
		t.Fatalf("seen=%d want 2", seen)
	}
	if s.State() != StateClosed || s.Termination() != TerminationDrained {
		t.Fatalf("state=%v termination=%v", s.State(), s.Termination())
	}
	if _, err := s.Next(ctx); !errors.Is(err, ErrDone) {
		t.Fatalf("expected ErrDone after drain, got %v", err)
	}
}

func TestSubscribeOverTLS(t *testing.T) {
	testlog.Start(t)
	ca := tlstest.NewAuthority(t)
	srv := fakeserver.NewTLS(t, ca.ServerConfig(t, ca.ServerPair(t), false))
	srv.HandleStream(subscribeMsgTyp, twoBatchesThenClose)

	cfg := srv.Config()
	cfg.TLS = rpc.TLSConfig{Enabled: true, CAFile: ca.CAFile()}
	c, err := rpc.New(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result, err := Subscribe[record](context.Background(), c, newRequest(time.Second), nil)
	if err != nil {
		t.Fatalf("subscribe over wss: %v", err)
	}
	if len(result.Records) != 3 {
		t.Fatalf("records=%+v", result.Records)
	}
}

func TestDecodeBatch(t *testing.T) {
	testlog.Start(t)
	tests := []struct {
		name    string
		payload string
		want    int
		wantErr bool
	}{
		{name: "array", payload: `[{"id":1},{"id":2}]`, want: 2},
		{name: "object", payload: `{"id":1}`, want: 1},
		{name: "null", payload: `null`, want: 0},
		{name: "empty array", payload: `[]`, want: 0},
		{name: "blank", payload: "  ", want: 0},
		{name: "scalar", payload: `42`, wantErr: true},
		{name: "broken object", payload: `{"id":`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeBatch([]byte(tc.payload))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("len=%d want %d", len(got), tc.want)
			}
		})
	}
}

func TestNegativeTimeoutRejected(t *testing.T) {
	testlog.Start(t)
	srv := fakeserver.New(t)
	if _, err := Dial(context.Background(), newClient(t, srv), newRequest(-time.Second)); !errors.Is(err, ErrNegativeTimeout) {
		t.Fatalf("expected ErrNegativeTimeout, got %v", err)
	}
}

package routing

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/rpc/provider"
)

var fastRetry = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    time.Millisecond,
	MaxDelay:        5 * time.Millisecond,
	BackoffMultiple: 2.0,
}

// fakeProvider returns scripted errors until they run out, then succeeds.
type fakeProvider struct {
	*provider.BaseProvider
	errs  []error
	calls int
}

func newFakeProvider(name string, errs ...error) *fakeProvider {
	return &fakeProvider{BaseProvider: provider.NewBaseProvider(name), errs: errs}
}

func (f *fakeProvider) Execute(ctx context.Context, op provider.Operation) (any, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return "ok", nil
}

func (f *fakeProvider) Close() error { return nil }

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorAction
	}{
		{status.Error(codes.Unavailable, "connection refused"), ActionRetry},
		{status.Error(codes.Internal, "boom"), ActionRetry},
		{status.Error(codes.ResourceExhausted, "rate limit"), ActionFailover},
		{status.Error(codes.PermissionDenied, "forbidden"), ActionFailover},
		{status.Error(codes.InvalidArgument, "bad query"), ActionFatal},
		{status.Error(codes.Unimplemented, "no such method"), ActionFatal},
		{context.Canceled, ActionFatal},
	}

	for _, c := range cases {
		if got := ClassifyError(c.err); got != c.want {
			t.Errorf("ClassifyError(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestExecuteWithRetryRecovers(t *testing.T) {
	p := newFakeProvider("flaky",
		status.Error(codes.Unavailable, "down"),
		status.Error(codes.Unavailable, "still down"),
	)

	result, err := ExecuteWithRetry(context.Background(), p, provider.Operation{Name: "GetTxsEvent"}, fastRetry)
	if err != nil {
		t.Fatalf("Expected recovery, got error: %v", err)
	}
	if result != "ok" {
		t.Errorf("Unexpected result: %v", result)
	}
	if p.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", p.calls)
	}
}

func TestExecuteWithRetryFatalStopsEarly(t *testing.T) {
	p := newFakeProvider("strict", status.Error(codes.InvalidArgument, "bad query"))

	_, err := ExecuteWithRetry(context.Background(), p, provider.Operation{Name: "GetTxsEvent"}, fastRetry)
	if err == nil {
		t.Fatal("Expected error")
	}
	if p.calls != 1 {
		t.Errorf("Expected 1 call for fatal error, got %d", p.calls)
	}
}

func TestExecuteWithRetryExhausts(t *testing.T) {
	p := newFakeProvider("dead",
		status.Error(codes.Unavailable, "down"),
		status.Error(codes.Unavailable, "down"),
		status.Error(codes.Unavailable, "down"),
	)

	_, err := ExecuteWithRetry(context.Background(), p, provider.Operation{Name: "GetTxsEvent"}, fastRetry)
	if err == nil {
		t.Fatal("Expected error after exhausting attempts")
	}
	if p.calls != fastRetry.MaxAttempts {
		t.Errorf("Expected %d calls, got %d", fastRetry.MaxAttempts, p.calls)
	}
}

func TestExecuteWithFailover(t *testing.T) {
	limited := newFakeProvider("limited", status.Error(codes.ResourceExhausted, "quota exceeded"))
	healthy := newFakeProvider("healthy")

	result, err := ExecuteWithFailover(
		context.Background(),
		[]provider.Provider{limited, healthy},
		provider.Operation{Name: "GetTxsEvent"},
		fastRetry,
	)
	if err != nil {
		t.Fatalf("Expected failover success, got: %v", err)
	}
	if result != "ok" {
		t.Errorf("Unexpected result: %v", result)
	}
	if limited.calls != 1 {
		t.Errorf("Expected quota error to fail over after 1 call, got %d", limited.calls)
	}
	if healthy.calls != 1 {
		t.Errorf("Expected second provider to serve the call, got %d", healthy.calls)
	}
}

func TestExecuteWithFailoverNoProviders(t *testing.T) {
	if _, err := ExecuteWithFailover(context.Background(), nil, provider.Operation{}, fastRetry); err == nil {
		t.Error("Expected error with no providers")
	}
}

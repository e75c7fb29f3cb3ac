package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/domain"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/chain/cosmos"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/rpc/provider"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage/memory"
)

// fakeConn serves scripted pages and records the queries it saw.
type fakeConn struct {
	pages   []*cosmos.GetTxsEventResponse
	calls   int
	queries [][]string
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
	req := args.(*cosmos.GetTxsEventRequest)
	f.queries = append(f.queries, req.Events)

	if f.calls >= len(f.pages) {
		return fmt.Errorf("no page scripted for call %d", f.calls)
	}
	*reply.(*cosmos.GetTxsEventResponse) = *f.pages[f.calls]
	f.calls++
	return nil
}

func (f *fakeConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, fmt.Errorf("streaming not implemented")
}

// fakeProvider runs operations against a fake connection, or fails.
type fakeProvider struct {
	*provider.BaseProvider
	conn *fakeConn
	err  error
}

func newFakeProvider(name string, conn *fakeConn, err error) *fakeProvider {
	return &fakeProvider{
		BaseProvider: provider.NewBaseProvider(name),
		conn:         conn,
		err:          err,
	}
}

func (p *fakeProvider) Execute(ctx context.Context, op provider.Operation) (any, error) {
	if p.err != nil {
		return nil, p.err
	}
	return op.Invoke(ctx, p.conn)
}

func (p *fakeProvider) Close() error { return nil }

func wasmTx(txHash string, attrs map[string]string) *cosmos.TxResponse {
	ev := cosmos.StringEvent{Type: "wasm"}
	ev.Attributes = append(ev.Attributes, cosmos.Attribute{Key: "_contract_address", Value: "fetch1token"})
	for k, v := range attrs {
		ev.Attributes = append(ev.Attributes, cosmos.Attribute{Key: k, Value: v})
	}
	return &cosmos.TxResponse{
		TxHash: txHash,
		Logs:   []cosmos.ABCIMessageLog{{Events: []cosmos.StringEvent{ev}}},
	}
}

func page(txs ...*cosmos.TxResponse) *cosmos.GetTxsEventResponse {
	return &cosmos.GetTxsEventResponse{
		TxResponses: txs,
		Pagination:  &cosmos.PageResponse{Total: uint64(len(txs))},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestFetchEventsBuildsEvents(t *testing.T) {
	conn := &fakeConn{pages: []*cosmos.GetTxsEventResponse{page(
		wasmTx("T1", map[string]string{
			"action": "transfer",
			"id":     "ATOM/USD-17",
			"from":   "fetch1sender",
			"to":     "fetch1receiver",
			"amount": "500",
		}),
	)}}
	p := newFakeProvider("primary", conn, nil)

	r := New("fetch1contract", 100, []provider.Provider{p}, memory.NewProcessedRepo(), testLogger())
	result, err := r.FetchEvents(context.Background(), Options{})
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}

	if len(result.Events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(result.Events))
	}
	e := result.Events[0]
	if e.TxHash != "T1" || e.Action != domain.ActionTransfer || e.TradePair != "ATOM/USD" {
		t.Errorf("Unexpected event: %+v", e)
	}
	if result.TxsScanned != 1 {
		t.Errorf("TxsScanned = %d", result.TxsScanned)
	}

	if len(conn.queries) != 1 || conn.queries[0][0] != "execute._contract_address='fetch1contract'" {
		t.Errorf("Unexpected queries: %v", conn.queries)
	}
}

func TestFetchEventsSingleActionPushedToServer(t *testing.T) {
	conn := &fakeConn{pages: []*cosmos.GetTxsEventResponse{page()}}
	p := newFakeProvider("primary", conn, nil)

	r := New("fetch1contract", 100, []provider.Provider{p}, memory.NewProcessedRepo(), testLogger())
	_, err := r.FetchEvents(context.Background(), Options{
		ActionTypes: []domain.ActionType{domain.ActionRefund},
	})
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}

	if len(conn.queries[0]) != 2 || conn.queries[0][1] != "wasm.action='refund'" {
		t.Errorf("Expected action query, got %v", conn.queries[0])
	}
}

func TestFetchEventsMultipleActionsFilteredClientSide(t *testing.T) {
	conn := &fakeConn{pages: []*cosmos.GetTxsEventResponse{page(
		wasmTx("T1", map[string]string{"action": "transfer", "id": "A/B-1"}),
		wasmTx("T2", map[string]string{"action": "create", "id": "A/B-2"}),
		wasmTx("T3", map[string]string{"action": "refund", "id": "A/B-3"}),
	)}}
	p := newFakeProvider("primary", conn, nil)

	r := New("fetch1contract", 100, []provider.Provider{p}, memory.NewProcessedRepo(), testLogger())
	result, err := r.FetchEvents(context.Background(), Options{
		ActionTypes: []domain.ActionType{domain.ActionTransfer, domain.ActionRefund},
	})
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}

	// No server-side action term when several actions are requested.
	if len(conn.queries[0]) != 1 {
		t.Errorf("Expected contract query only, got %v", conn.queries[0])
	}
	if len(result.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(result.Events))
	}
	if result.Events[0].TxHash != "T1" || result.Events[1].TxHash != "T3" {
		t.Errorf("Unexpected events: %v, %v", result.Events[0], result.Events[1])
	}
}

func TestFetchEventsWalletFilter(t *testing.T) {
	conn := &fakeConn{pages: []*cosmos.GetTxsEventResponse{page(
		wasmTx("T1", map[string]string{"action": "transfer", "from": "fetch1alice"}),
		wasmTx("T2", map[string]string{"action": "transfer", "from": "fetch1bob"}),
	)}}
	p := newFakeProvider("primary", conn, nil)

	r := New("fetch1contract", 100, []provider.Provider{p}, memory.NewProcessedRepo(), testLogger())
	result, err := r.FetchEvents(context.Background(), Options{WalletAddress: "fetch1bob"})
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}

	if len(result.Events) != 1 || result.Events[0].TxHash != "T2" {
		t.Errorf("Expected only fetch1bob's event, got %v", result.Events)
	}
}

func TestFetchEventsDiscardProcessed(t *testing.T) {
	processed := memory.NewProcessedRepo()
	if err := processed.AddBatch(context.Background(), []string{"T1"}); err != nil {
		t.Fatal(err)
	}

	makeConn := func() *fakeConn {
		return &fakeConn{pages: []*cosmos.GetTxsEventResponse{page(
			wasmTx("T1", map[string]string{"action": "transfer"}),
			wasmTx("T2", map[string]string{"action": "transfer"}),
		)}}
	}

	p := newFakeProvider("primary", makeConn(), nil)
	r := New("fetch1contract", 100, []provider.Provider{p}, processed, testLogger())

	result, err := r.FetchEvents(context.Background(), Options{DiscardProcessed: true})
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}
	if len(result.Events) != 1 || result.Events[0].TxHash != "T2" {
		t.Fatalf("Expected only T2, got %v", result.Events)
	}

	// The second cycle sees the same page and yields nothing new.
	p.conn = makeConn()
	result, err = r.FetchEvents(context.Background(), Options{DiscardProcessed: true})
	if err != nil {
		t.Fatalf("Second FetchEvents failed: %v", err)
	}
	if len(result.Events) != 0 {
		t.Errorf("Expected no new events, got %v", result.Events)
	}
}

func TestFetchEventsFilteredOutTxsStayFetchable(t *testing.T) {
	processed := memory.NewProcessedRepo()
	makeConn := func() *fakeConn {
		return &fakeConn{pages: []*cosmos.GetTxsEventResponse{page(
			wasmTx("T1", map[string]string{"action": "transfer", "from": "fetch1bob"}),
		)}}
	}

	p := newFakeProvider("primary", makeConn(), nil)
	r := New("fetch1contract", 100, []provider.Provider{p}, processed, testLogger())

	// Alice's filter delivers nothing, so bob's tx must not be marked.
	result, err := r.FetchEvents(context.Background(), Options{
		DiscardProcessed: true,
		WalletAddress:    "fetch1alice",
	})
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}
	if len(result.Events) != 0 {
		t.Fatalf("Expected no events for fetch1alice, got %v", result.Events)
	}

	p.conn = makeConn()
	result, err = r.FetchEvents(context.Background(), Options{
		DiscardProcessed: true,
		WalletAddress:    "fetch1bob",
	})
	if err != nil {
		t.Fatalf("Second FetchEvents failed: %v", err)
	}
	if len(result.Events) != 1 || result.Events[0].TxHash != "T1" {
		t.Fatalf("Undelivered tx should stay fetchable, got %v", result.Events)
	}

	// Delivered once, the tx is now deduplicated.
	p.conn = makeConn()
	result, err = r.FetchEvents(context.Background(), Options{
		DiscardProcessed: true,
		WalletAddress:    "fetch1bob",
	})
	if err != nil {
		t.Fatalf("Third FetchEvents failed: %v", err)
	}
	if len(result.Events) != 0 {
		t.Errorf("Expected delivered tx to be skipped, got %v", result.Events)
	}
}

func TestFetchEventsWithoutDiscardKeepsReplays(t *testing.T) {
	processed := memory.NewProcessedRepo()
	if err := processed.AddBatch(context.Background(), []string{"T1"}); err != nil {
		t.Fatal(err)
	}

	conn := &fakeConn{pages: []*cosmos.GetTxsEventResponse{page(
		wasmTx("T1", map[string]string{"action": "transfer"}),
	)}}
	p := newFakeProvider("primary", conn, nil)

	r := New("fetch1contract", 100, []provider.Provider{p}, processed, testLogger())
	result, err := r.FetchEvents(context.Background(), Options{DiscardProcessed: false})
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}
	if len(result.Events) != 1 {
		t.Errorf("Expected replayed event to pass through, got %v", result.Events)
	}
}

func TestFetchEventsFailsOverToSecondProvider(t *testing.T) {
	failing := newFakeProvider("primary", nil, status.Error(codes.ResourceExhausted, "quota exceeded"))
	conn := &fakeConn{pages: []*cosmos.GetTxsEventResponse{page(
		wasmTx("T1", map[string]string{"action": "create"}),
	)}}
	backup := newFakeProvider("backup", conn, nil)

	r := New("fetch1contract", 100,
		[]provider.Provider{failing, backup},
		memory.NewProcessedRepo(), testLogger())

	result, err := r.FetchEvents(context.Background(), Options{})
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}
	if len(result.Events) != 1 || result.Events[0].Action != domain.ActionCreate {
		t.Errorf("Expected event from backup provider, got %v", result.Events)
	}
}

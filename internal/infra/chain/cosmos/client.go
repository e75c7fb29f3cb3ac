package cosmos

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

const txsEventMethod = "/cosmos.tx.v1beta1.Service/GetTxsEvent"

// TxClient provides typed access to the transaction query service over
// any gRPC connection.
type TxClient struct {
	conn grpc.ClientConnInterface
}

// NewTxClient creates a typed tx-service client.
func NewTxClient(conn grpc.ClientConnInterface) *TxClient {
	return &TxClient{conn: conn}
}

// GetTxsEvent fetches one page of transactions matching the event queries.
func (c *TxClient) GetTxsEvent(ctx context.Context, req *GetTxsEventRequest) (*GetTxsEventResponse, error) {
	resp := new(GetTxsEventResponse)
	if err := c.conn.Invoke(ctx, txsEventMethod, req, resp, grpc.ForceCodec(txCodec{})); err != nil {
		return nil, err
	}
	return resp, nil
}

// QueryTxsByEvents pages through every transaction matching the queries,
// advancing the offset until the reported total is consumed. An empty
// page also terminates the loop, so a server that omits the total cannot
// spin forever.
func (c *TxClient) QueryTxsByEvents(ctx context.Context, queries []string, pageLimit uint64) ([]*TxResponse, error) {
	var (
		out    []*TxResponse
		offset uint64
	)

	for {
		resp, err := c.GetTxsEvent(ctx, &GetTxsEventRequest{
			Events: queries,
			Pagination: &PageRequest{
				Offset:     offset,
				Limit:      pageLimit,
				CountTotal: offset == 0,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("get txs event (offset %d): %w", offset, err)
		}

		out = append(out, resp.TxResponses...)
		offset += uint64(len(resp.TxResponses))

		total := resp.Total
		if resp.Pagination != nil && resp.Pagination.Total > total {
			total = resp.Pagination.Total
		}
		if len(resp.TxResponses) == 0 || offset >= total {
			break
		}
	}

	return out, nil
}

// ContractQuery builds the event query matching executions of a contract.
func ContractQuery(contractAddress string) string {
	return fmt.Sprintf("execute._contract_address='%s'", contractAddress)
}

// ActionQuery builds the event query matching a wasm action.
func ActionQuery(action string) string {
	return fmt.Sprintf("wasm.action='%s'", action)
}

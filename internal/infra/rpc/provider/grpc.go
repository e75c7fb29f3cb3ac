package provider

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/codewithdpk/fetch-network-event-poller/internal/fetching/metrics"
)

// GRPCProvider implements Provider for a Cosmos tx-service endpoint.
// Typed clients run against the connection through Operation.Invoke.
type GRPCProvider struct {
	*BaseProvider
	endpoint string
	conn     *grpc.ClientConn
}

// NewGRPCProvider creates a new gRPC provider.
// Endpoints with an https:// scheme or a :443 suffix are dialed with TLS
// using the system root-certificate pool; everything else is insecure.
func NewGRPCProvider(ctx context.Context, name, endpoint string, dialTimeout time.Duration) (*GRPCProvider, error) {
	target := endpoint
	var opts []grpc.DialOption

	if strings.HasPrefix(endpoint, "https://") || strings.HasSuffix(endpoint, ":443") {
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("failed to load system cert pool: %w", err)
		}
		creds := credentials.NewTLS(&tls.Config{RootCAs: pool})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		target = strings.TrimPrefix(target, "https://")
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		target = strings.TrimPrefix(target, "http://")
	}

	opts = append(opts, grpc.WithBlock()) // Wait for connection

	if dialTimeout == 0 {
		dialTimeout = 10 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(dialCtx, target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial grpc endpoint %s: %w", target, err)
	}

	return &GRPCProvider{
		BaseProvider: NewBaseProvider(name),
		endpoint:     endpoint,
		conn:         conn,
	}, nil
}

// Conn returns the underlying gRPC connection.
func (p *GRPCProvider) Conn() *grpc.ClientConn {
	return p.conn
}

// Execute runs the operation against this provider's connection,
// recording latency and throttle state.
func (p *GRPCProvider) Execute(ctx context.Context, op Operation) (any, error) {
	if op.Invoke == nil {
		return nil, fmt.Errorf("operation %s has no invoke function", op.Name)
	}

	start := time.Now()
	result, err := op.Invoke(ctx, p.conn)
	latency := time.Since(start)

	if err != nil {
		p.RecordFailure()
		if st, ok := status.FromError(err); ok {
			metrics.GRPCRequestErrors.WithLabelValues(p.Name, st.Code().String()).Inc()
			switch st.Code() {
			case codes.ResourceExhausted, codes.PermissionDenied, codes.Unauthenticated:
				p.Monitor.RecordThrottle(st.Code(), 0)
			default:
				// Some endpoints rate limit under a generic code with
				// the limit only in the message.
				if p.Monitor.DetectThrottlePattern(st.Message()) {
					p.Monitor.RecordThrottle(codes.ResourceExhausted, 0)
				}
			}
		}
		p.setHealthGauge()
		return nil, fmt.Errorf("%s on %s: %w", op.Name, p.Name, err)
	}

	p.RecordSuccess(latency)
	metrics.GRPCRequestDuration.WithLabelValues(p.Name, op.Name).Observe(latency.Seconds())
	p.setHealthGauge()
	return result, nil
}

func (p *GRPCProvider) setHealthGauge() {
	v := 0.0
	if p.IsAvailable() {
		v = 1.0
	}
	metrics.ProviderHealthy.WithLabelValues(p.Name).Set(v)
}

// Close cleans up resources.
func (p *GRPCProvider) Close() error {
	return p.conn.Close()
}

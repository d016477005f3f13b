// Package client is a thin gRPC client for CardioRiskService.
//
// Calls use the JSON codec registered by the presentation/grpc package, so the
// request and response types are shared with the server instead of generated.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"

	cardiogrpc "github.com/bibbank/cardiorisk/internal/presentation/grpc"
	"github.com/bibbank/cardiorisk/pkg/tlsutil"
)

// Config configures the connection.
type Config struct {
	Address string
	// Token is sent as a bearer token on every call when set.
	Token string
	// TLS enables transport security. CAFile may be empty to trust the system pool.
	TLS                bool
	CAFile             string
	InsecureSkipVerify bool
	// DialOptions are appended after the transport credentials.
	DialOptions []grpc.DialOption
}

// Client talks to a CardioRiskService.
type Client struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
	token  string
	logger *slog.Logger
}

// Dial creates a client. The connection is established lazily on the first call.
func Dial(cfg Config, logger *slog.Logger) (*Client, error) {
	var creds credentials.TransportCredentials = insecure.NewCredentials()
	if cfg.TLS {
		c, err := tlsutil.ClientCredentials(cfg.CAFile, cfg.InsecureSkipVerify)
		if err != nil {
			return nil, err
		}
		creds = c
	}

	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, cfg.DialOptions...)
	conn, err := grpc.NewClient(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial cardio risk service at %s: %w", cfg.Address, err)
	}

	logger.Debug("created cardio risk client", "addr", cfg.Address, "tls", cfg.TLS)

	return &Client{
		conn:   conn,
		health: healthpb.NewHealthClient(conn),
		token:  cfg.Token,
		logger: logger,
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Predict scores one set of form inputs.
func (c *Client) Predict(ctx context.Context, inputs map[string]any) (*cardiogrpc.PredictResponse, error) {
	resp := new(cardiogrpc.PredictResponse)
	if err := c.invoke(ctx, cardiogrpc.MethodPredict, &cardiogrpc.PredictRequest{Inputs: inputs}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetSchema returns the form fields and the served model's status.
func (c *Client) GetSchema(ctx context.Context) (*cardiogrpc.GetSchemaResponse, error) {
	resp := new(cardiogrpc.GetSchemaResponse)
	if err := c.invoke(ctx, cardiogrpc.MethodGetSchema, &cardiogrpc.GetSchemaRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CheckHealth queries the gRPC health endpoint for the service.
func (c *Client) CheckHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: cardiogrpc.ServiceName})
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("service not serving: %s", resp.Status)
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	return c.conn.Invoke(ctx, method, req, resp, grpc.ForceCodecCallOption{Codec: cardiogrpc.JSONCodec{}})
}

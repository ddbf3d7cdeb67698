package grpc

import (
	"context"
	"fmt"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// ClientOptions configures a Client. Nil Credentials dials in plaintext and an
// empty Token sends no authorization header.
type ClientOptions struct {
	Credentials credentials.TransportCredentials
	Token       string
	DialOptions []grpclib.DialOption
}

// Client is a typed SubjectivityService client.
type Client struct {
	conn *grpclib.ClientConn
}

// NewClient creates a client for target. The connection is established lazily.
func NewClient(target string, opts ClientOptions) (*Client, error) {
	creds := opts.Credentials
	if creds == nil {
		creds = insecure.NewCredentials()
	}

	dial := []grpclib.DialOption{grpclib.WithTransportCredentials(creds)}
	if opts.Token != "" {
		dial = append(dial, grpclib.WithPerRPCCredentials(bearerToken{
			token:  opts.Token,
			secure: opts.Credentials != nil,
		}))
	}
	dial = append(dial, opts.DialOptions...)

	conn, err := grpclib.NewClient(target, dial...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Conn exposes the underlying connection, e.g. for the health service.
// Calls made on it directly use the default proto codec.
func (c *Client) Conn() *grpclib.ClientConn { return c.conn }

// Close closes the connection.
func (c *Client) Close() error { return c.conn.Close() }

// Score calls SubjectivityService.Score.
func (c *Client) Score(ctx context.Context, req *ScoreRequest) (*ScoreResponse, error) {
	return call[ScoreResponse](ctx, c.conn, MethodScore, req)
}

// AssessText calls SubjectivityService.AssessText.
func (c *Client) AssessText(ctx context.Context, req *AssessTextRequest) (*AssessTextResponse, error) {
	return call[AssessTextResponse](ctx, c.conn, MethodAssessText, req)
}

// AssessBatch calls SubjectivityService.AssessBatch.
func (c *Client) AssessBatch(ctx context.Context, req *AssessBatchRequest) (*AssessBatchResponse, error) {
	return call[AssessBatchResponse](ctx, c.conn, MethodAssessBatch, req)
}

// GetAssessment calls SubjectivityService.GetAssessment.
func (c *Client) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	return call[GetAssessmentResponse](ctx, c.conn, MethodGetAssessment, req)
}

// ListAssessments calls SubjectivityService.ListAssessments.
func (c *Client) ListAssessments(ctx context.Context, req *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	return call[ListAssessmentsResponse](ctx, c.conn, MethodListAssessments, req)
}

func call[Resp any](ctx context.Context, conn *grpclib.ClientConn, method string, req any) (*Resp, error) {
	resp := new(Resp)
	if err := conn.Invoke(ctx, method, req, resp, JSONCallOption()); err != nil {
		return nil, err
	}
	return resp, nil
}

// bearerToken attaches a JWT to every call.
type bearerToken struct {
	token  string
	secure bool
}

func (b bearerToken) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}

func (b bearerToken) RequireTransportSecurity() bool { return b.secure }

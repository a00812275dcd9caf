package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Belphemur/MediaDownloader/internal/models"
)

// Client calls a bridge service
type Client struct {
	conn   grpc.ClientConnInterface
	closer io.Closer
}

// Dial connects to the bridge listening on address
func Dial(address string) (*Client, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bridge at %s: %w", address, err)
	}
	return &Client{conn: conn, closer: conn}, nil
}

// NewClient wraps an existing connection
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Close closes a connection opened by Dial
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// Invoke sends a request on channel. Handler failures come back as a failed
// envelope, not as an error.
func (c *Client) Invoke(ctx context.Context, channel string, args ...any) (models.Envelope, error) {
	req, err := convertRequestToProto(channel, args)
	if err != nil {
		return models.Envelope{}, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, InvokeMethod, req, resp); err != nil {
		return models.Envelope{}, err
	}
	return convertEnvelopeFromProto(resp), nil
}

// Subscribe streams events until ctx is cancelled or the server ends the stream.
// The returned channel is closed when the stream ends; the error channel then
// carries the reason, or nothing on a clean end.
func (c *Client) Subscribe(ctx context.Context) (<-chan models.Event, <-chan error, error) {
	stream, err := c.conn.NewStream(ctx, &BridgeServiceDesc.Streams[0], SubscribeMethod)
	if err != nil {
		return nil, nil, err
	}
	typed := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := typed.Send(&structpb.Struct{}); err != nil {
		return nil, nil, err
	}
	if err := typed.CloseSend(); err != nil {
		return nil, nil, err
	}

	events := make(chan models.Event)
	errs := make(chan error, 1)
	go func() {
		defer close(events)
		defer close(errs)
		for {
			msg, err := typed.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					errs <- err
				}
				return
			}
			select {
			case events <- convertEventFromProto(msg):
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()
	return events, errs, nil
}

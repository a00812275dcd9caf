package grpc

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Belphemur/MediaDownloader/internal/config"
	"github.com/Belphemur/MediaDownloader/internal/ipc"
)

// errorDomain is set on ErrorInfo details returned by the bridge service
const errorDomain = "mediago.v1"

// server implements the BridgeServer interface on top of an ipc.Bridge
type server struct {
	bridge *ipc.Bridge
	logger zerolog.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(b *ipc.Bridge) BridgeServer {
	return &server{
		bridge: b,
		logger: config.GetLogger(),
	}
}

// Invoke implements BridgeServer.Invoke. Handler failures are reported in the
// envelope; only malformed requests fail the RPC itself.
func (s *server) Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	channel, args, err := convertRequestFromProto(req)
	if err != nil {
		return nil, invalidArgument(err.Error(), "MISSING_CHANNEL")
	}
	s.logger.Debug().Str("channel", channel).Int("args", len(args)).Msg("Invoke called")

	env := s.bridge.Invoke(ctx, channel, ipc.Args(args))

	resp, err := convertEnvelopeToProto(env)
	if err != nil {
		s.logger.Error().Err(err).Str("channel", channel).Msg("Failed to encode response")
		return nil, status.Errorf(codes.Internal, "failed to encode response for %s: %v", channel, err)
	}

	s.logger.Debug().Str("channel", channel).Int("code", env.Code).Msg("Invoke completed")
	return resp, nil
}

// Subscribe implements BridgeServer.Subscribe. Events are streamed until the client
// goes away or the bridge shuts its event bus down.
func (s *server) Subscribe(_ *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	events, unsubscribe := s.bridge.Events().Subscribe()
	defer unsubscribe()

	logger := s.logger.With().Str("subscription", uuid.NewString()).Logger()
	logger.Debug().Msg("Subscribe called")
	sent := 0
	for {
		select {
		case <-ctx.Done():
			logger.Debug().Int("count", sent).Msg("Subscribe cancelled by client")
			return status.FromContextError(ctx.Err()).Err()
		case e, ok := <-events:
			if !ok {
				logger.Debug().Int("count", sent).Msg("Subscribe completed")
				return nil
			}
			msg, err := convertEventToProto(e)
			if err != nil {
				logger.Warn().Err(err).Str("channel", e.Channel).Msg("Skipping event that cannot be encoded")
				continue
			}
			if err := stream.Send(msg); err != nil {
				logger.Error().Err(err).Str("channel", e.Channel).Msg("Failed to send event")
				return status.Errorf(codes.Internal, "failed to send event: %v", err)
			}
			sent++
		}
	}
}

// invalidArgument builds an InvalidArgument status carrying an ErrorInfo detail
func invalidArgument(msg, reason string) error {
	st := status.New(codes.InvalidArgument, msg)
	withDetails, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason: reason,
		Domain: errorDomain,
	})
	if err != nil {
		return st.Err()
	}
	return withDetails.Err()
}

package grpc

import (
	"context"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// interceptorLogger adapts a zerolog logger to the logging middleware
func interceptorLogger(l zerolog.Logger) logging.Logger {
	return logging.LoggerFunc(func(_ context.Context, lvl logging.Level, msg string, fields ...any) {
		l := l.With().Fields(fields).Logger()
		switch lvl {
		case logging.LevelDebug:
			l.Debug().Msg(msg)
		case logging.LevelInfo:
			l.Info().Msg(msg)
		case logging.LevelWarn:
			l.Warn().Msg(msg)
		case logging.LevelError:
			l.Error().Msg(msg)
		default:
			l.Info().Msg(msg)
		}
	})
}

// recoveryHandler reports a panic to Sentry and fails the call with Internal
func recoveryHandler(l zerolog.Logger) recovery.RecoveryHandlerFunc {
	return func(p any) error {
		sentry.CurrentHub().Recover(p)
		l.Error().Str("panic", fmt.Sprint(p)).Msg("Recovered from panic in gRPC handler")
		return status.Errorf(codes.Internal, "internal error")
	}
}

package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/oshokin/flipclock/internal/domain/alarm"
	"github.com/oshokin/flipclock/internal/logger"
)

// Metadata keys carrying the caller identity.
const (
	hostnameKey = "x-actor-hostname"
	usernameKey = "x-actor-username"
)

// WithActor attaches the caller identity to an outgoing RPC context.
func WithActor(ctx context.Context, actor *alarm.Actor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx, hostnameKey, actor.Hostname, usernameKey, actor.Username)
}

// ActorFromContext reads the caller identity from incoming RPC metadata.
func ActorFromContext(ctx context.Context) *alarm.Actor {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	first := func(key string) string {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}

		return ""
	}

	actor := &alarm.Actor{
		Hostname: first(hostnameKey),
		Username: first(usernameKey),
	}

	if actor.Hostname == "" && actor.Username == "" {
		return nil
	}

	return actor
}

// LoggingInterceptor names the request logger after the method and tags it
// with the calling actor, so alarm changes are auditable.
func LoggingInterceptor(base context.Context) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = logger.ToContext(ctx, logger.FromContext(base))
		ctx = logger.WithKV(ctx, "method", info.FullMethod, "actor", ActorFromContext(ctx).String())

		resp, err := handler(ctx, req)
		if err != nil {
			logger.WarnKV(ctx, "Control call failed", "error", err)
		} else {
			logger.DebugKV(ctx, "Control call served")
		}

		return resp, err
	}
}

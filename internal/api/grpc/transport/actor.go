package transport

import (
	"context"

	"google.golang.org/grpc/metadata"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

const (
	// hostnameKey carries the requesting machine name.
	hostnameKey = "x-bell-hostname"
	// usernameKey carries the requesting system user.
	usernameKey = "x-bell-username"
)

// WithActor attaches the actor to outgoing request metadata.
func WithActor(ctx context.Context, actor *bell.Actor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx,
		hostnameKey, actor.Hostname,
		usernameKey, actor.Username,
	)
}

// ActorFromContext reads the actor from incoming request metadata.
// Returns nil when the caller did not identify itself.
func ActorFromContext(ctx context.Context) *bell.Actor {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	var (
		hostnames = md.Get(hostnameKey)
		usernames = md.Get(usernameKey)
	)

	if len(hostnames) == 0 && len(usernames) == 0 {
		return nil
	}

	actor := new(bell.Actor)

	if len(hostnames) > 0 {
		actor.Hostname = hostnames[0]
	}

	if len(usernames) > 0 {
		actor.Username = usernames[0]
	}

	return actor
}

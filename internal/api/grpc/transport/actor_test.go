package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

// TestActorMetadata ensures an actor survives the outgoing-to-incoming handoff.
func TestActorMetadata(t *testing.T) {
	t.Parallel()

	require.Nil(t, ActorFromContext(context.Background()))

	actor := &bell.Actor{Hostname: "staffroom", Username: "o.shokin"}
	outgoing := WithActor(context.Background(), actor)

	md, ok := metadata.FromOutgoingContext(outgoing)
	require.True(t, ok)

	incoming := metadata.NewIncomingContext(context.Background(), md)
	require.Equal(t, actor, ActorFromContext(incoming))

	require.Equal(t, context.Background(), WithActor(context.Background(), nil))
}

package console

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

// Pending is the console listing: the draft, if any, and the scheduled rings.
type Pending struct {
	// Staged is the drafted delay, zero when nothing is staged.
	Staged time.Duration
	// Rings are the scheduled rings ordered by due time.
	Rings []bell.ManualRing
}

// EncodeRing converts a ring to a Struct.
func EncodeRing(ring bell.ManualRing) (*structpb.Struct, error) {
	return structpb.NewStruct(ringFields(ring))
}

// DecodeRing converts a Struct back to a ring.
func DecodeRing(s *structpb.Struct) (bell.ManualRing, error) {
	return ringFromFields(s.AsMap())
}

// EncodePending converts a listing to a Struct.
func EncodePending(pending Pending) (*structpb.Struct, error) {
	rings := make([]any, 0, len(pending.Rings))
	for _, ring := range pending.Rings {
		rings = append(rings, ringFields(ring))
	}

	fields := map[string]any{
		"rings": rings,
	}

	if pending.Staged > 0 {
		fields["staged"] = pending.Staged.String()
	}

	return structpb.NewStruct(fields)
}

// DecodePending converts a Struct back to a listing.
func DecodePending(s *structpb.Struct) (Pending, error) {
	var (
		fields  = s.AsMap()
		pending Pending
	)

	if staged, ok := fields["staged"].(string); ok {
		delay, err := time.ParseDuration(staged)
		if err != nil {
			return Pending{}, fmt.Errorf("parse staged delay: %w", err)
		}

		pending.Staged = delay
	}

	rings, _ := fields["rings"].([]any)
	for _, raw := range rings {
		ringMap, ok := raw.(map[string]any)
		if !ok {
			return Pending{}, fmt.Errorf("ring entry has type %T", raw)
		}

		ring, err := ringFromFields(ringMap)
		if err != nil {
			return Pending{}, err
		}

		pending.Rings = append(pending.Rings, ring)
	}

	return pending, nil
}

func ringFields(ring bell.ManualRing) map[string]any {
	fields := map[string]any{
		"id":        ring.ID,
		"due":       ring.Due.Format(time.RFC3339Nano),
		"requested": ring.Requested.Format(time.RFC3339Nano),
	}

	if ring.Actor != nil {
		fields["actor"] = map[string]any{
			"hostname": ring.Actor.Hostname,
			"username": ring.Actor.Username,
		}
	}

	return fields
}

func ringFromFields(fields map[string]any) (bell.ManualRing, error) {
	ring := bell.ManualRing{}
	ring.ID, _ = fields["id"].(string)

	for key, target := range map[string]*time.Time{"due": &ring.Due, "requested": &ring.Requested} {
		value, _ := fields[key].(string)
		if value == "" {
			continue
		}

		parsed, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return bell.ManualRing{}, fmt.Errorf("parse ring %s: %w", key, err)
		}

		*target = parsed
	}

	if actor, ok := fields["actor"].(map[string]any); ok {
		ring.Actor = &bell.Actor{}
		ring.Actor.Hostname, _ = actor["hostname"].(string)
		ring.Actor.Username, _ = actor["username"].(string)
	}

	return ring, nil
}

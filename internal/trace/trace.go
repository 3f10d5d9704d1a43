// Package trace generates per-lookup trace identifiers and carries them on
// a context.Context, independent of whether OpenTelemetry sampling picked
// up the request.
package trace

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"chorddfs/internal/ring"
)

type traceKey struct{}

// GenerateID builds a trace id in the form "<selfID>-<ULID>".
func GenerateID(selfID ring.ID) string {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	return fmt.Sprintf("%d-%s", selfID, id.String())
}

// Attach generates a trace id for selfID and returns a context carrying it.
func Attach(ctx context.Context, selfID ring.ID) (context.Context, string) {
	id := GenerateID(selfID)
	return context.WithValue(ctx, traceKey{}, id), id
}

// ID returns the trace id carried by ctx, or "" if none was attached.
func ID(ctx context.Context) string {
	if v := ctx.Value(traceKey{}); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// Ensure returns ctx unchanged if it already carries a trace id, otherwise
// attaches a fresh one derived from selfID.
func Ensure(ctx context.Context, selfID ring.ID) context.Context {
	if ID(ctx) != "" {
		return ctx
	}
	ctx, _ = Attach(ctx, selfID)
	return ctx
}

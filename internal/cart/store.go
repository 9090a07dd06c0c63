package cart

import (
	"context"
	"encoding/json"
)

// SnapshotVersion tags persisted carts so older or corrupted blobs can be
// recognized and discarded instead of half-decoded.
const SnapshotVersion = 1

type snapshot struct {
	Version    int      `json:"version"`
	Items      []Line   `json:"items"`
	TipPercent *float64 `json:"tipPercentage,omitempty"`
	TipAmount  *float64 `json:"tipAmount,omitempty"`
}

// Store is the persistence port for cart state. Load never fails on bad
// data: a missing, malformed, or wrong-version snapshot comes back as a
// typed empty cart.
type Store interface {
	Load(ctx context.Context, key string) (*Cart, error)
	Save(ctx context.Context, key string, c *Cart) error
	Delete(ctx context.Context, key string) error
}

func Encode(c *Cart) ([]byte, error) {
	return json.Marshal(snapshot{
		Version:    SnapshotVersion,
		Items:      c.Lines,
		TipPercent: c.TipPercent,
		TipAmount:  c.TipAmount,
	})
}

// Decode returns the cart held in data, or a fresh empty cart when the blob
// cannot be trusted. The second return reports whether the blob decoded
// cleanly, so stores can log discarded state.
func Decode(data []byte) (*Cart, bool) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return New(), false
	}
	if snap.Version != SnapshotVersion {
		return New(), false
	}
	c := &Cart{
		Lines:      snap.Items,
		TipPercent: snap.TipPercent,
		TipAmount:  snap.TipAmount,
	}
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	return c, true
}

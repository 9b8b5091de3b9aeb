// Package native serves native pool module state from a JSON snapshot file.
package native

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/apollodao/cw-dex-sub000/pkg/pool"
)

// Entry is one pool of the ledger file.
type Entry struct {
	ID       uint64         `json:"id"`
	Curve    pool.CurveKind `json:"curve"`
	Snapshot pool.Snapshot  `json:"snapshot"`
}

type file struct {
	// Now pins the block time of every pool. Zero means wall clock.
	Now   uint64  `json:"now,omitempty"`
	Pools []Entry `json:"pools"`
}

// Ledger is an immutable view of native pools loaded once at startup.
type Ledger struct {
	now   uint64
	pools map[uint64]Entry
	clock func() time.Time
}

// Load reads a ledger file.
func Load(path string) (*Ledger, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read native pools: %w", err)
	}
	return Parse(b)
}

// Parse decodes a ledger document and validates every pool in it.
func Parse(b []byte) (*Ledger, error) {
	var f file
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLedger, err)
	}
	l := &Ledger{now: f.Now, pools: make(map[uint64]Entry, len(f.Pools)), clock: time.Now}
	for _, e := range f.Pools {
		if _, dup := l.pools[e.ID]; dup {
			return nil, fmt.Errorf("%w: pool %d listed twice", ErrInvalidLedger, e.ID)
		}
		if len(e.Snapshot.Reserves.Assets) < 2 {
			return nil, fmt.Errorf("%w: pool %d has %d assets", ErrInvalidLedger, e.ID, len(e.Snapshot.Reserves.Assets))
		}
		if _, err := pool.NewNativePool(e.ID, members(e.Snapshot.Reserves), e.Curve, e.Snapshot); err != nil {
			return nil, fmt.Errorf("%w: pool %d: %w", ErrInvalidLedger, e.ID, err)
		}
		if e.Curve == pool.CurveStableSwap && e.Snapshot.Amp == nil {
			return nil, fmt.Errorf("%w: pool %d: %w", ErrInvalidLedger, e.ID, pool.ErrMissingAmp)
		}
		l.pools[e.ID] = e
	}
	return l, nil
}

// Empty returns a ledger without pools.
func Empty() *Ledger {
	return &Ledger{pools: map[uint64]Entry{}, clock: time.Now}
}

// NativePool returns a fresh copy of pool id. Reserves handed out are never
// shared with the ledger or with other callers.
func (l *Ledger) NativePool(_ context.Context, id uint64) (*pool.NativePool, error) {
	e, ok := l.pools[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrPoolNotFound, id)
	}
	snap := e.Snapshot
	snap.Reserves.Assets = slices.Clone(snap.Reserves.Assets)
	if snap.Amp != nil {
		amp := *snap.Amp
		snap.Amp = &amp
	}
	if snap.Now == 0 {
		snap.Now = l.blockTime()
	}
	return pool.NewNativePool(id, members(snap.Reserves), e.Curve, snap)
}

// IDs lists the known pool ids in ascending order.
func (l *Ledger) IDs() []uint64 {
	ids := make([]uint64, 0, len(l.pools))
	for id := range l.pools {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (l *Ledger) blockTime() uint64 {
	if l.now != 0 {
		return l.now
	}
	return uint64(l.clock().Unix())
}

func members(r amm.PoolReserves) []amm.AssetIdentity {
	out := make([]amm.AssetIdentity, len(r.Assets))
	for i := range r.Assets {
		out[i] = r.Assets[i].ID
	}
	return out
}

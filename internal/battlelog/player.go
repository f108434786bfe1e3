// Package battlelog holds the per-save battle log: one entry per
// fought entity, with a winner and per-player loss counters.
package battlelog

import (
	"encoding/json"
	"fmt"
)

// PlayerRef names the owner of a counter: either one seat in the
// configured player list, or the shared bucket used when no single
// seat applies. The zero value is the shared bucket, so a fresh
// entry's winner starts out as "nobody yet".
type PlayerRef struct {
	seat   int
	isSeat bool
}

// Shared is the bucket reference.
var Shared = PlayerRef{}

// Seat returns a reference to the zero-based seat n. Negative seats
// collapse to the shared bucket, matching the wire encoding.
func Seat(n int) PlayerRef {
	if n < 0 {
		return Shared
	}
	return PlayerRef{seat: n, isSeat: true}
}

// IsShared reports whether p is the shared bucket.
func (p PlayerRef) IsShared() bool {
	return !p.isSeat
}

// SeatIndex returns the zero-based seat, or -1 for the shared bucket.
func (p PlayerRef) SeatIndex() int {
	if !p.isSeat {
		return -1
	}
	return p.seat
}

func (p PlayerRef) String() string {
	if !p.isSeat {
		return "shared"
	}
	return fmt.Sprintf("seat %d", p.seat)
}

// MarshalJSON encodes the reference as its seat index, with -1 for
// the shared bucket.
func (p PlayerRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.SeatIndex())
}

// UnmarshalJSON accepts any integer; everything below zero is the
// shared bucket.
func (p *PlayerRef) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode player reference: %w", err)
	}
	*p = Seat(n)
	return nil
}

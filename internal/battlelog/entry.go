package battlelog

// Kind classifies what a battle entry was fought against.
type Kind int

const (
	KindSpirit Kind = iota
	KindFighter
	KindBoss
)

var kindNames = map[Kind]string{
	KindSpirit:  "Spirit",
	KindFighter: "Fighter",
	KindBoss:    "Boss",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind maps a kind name to its value, case-sensitively.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if s == name {
			return k, true
		}
	}
	return KindSpirit, false
}

// PlayerTally is one owner's mutable counters within an entry.
type PlayerTally struct {
	Losses int `json:"losses"`
}

// Entry is one battle-log row. A shared entry keeps a single loss
// tally for the whole table; an individual one keeps a tally per
// seat. Both shapes are always present so the semantics can be
// toggled without losing counts.
type Entry struct {
	DisplayName string              `json:"display_name,omitempty"`
	Kind        Kind                `json:"kind"`
	Winner      PlayerRef           `json:"winner"`
	IsShared    bool                `json:"shared,omitempty"`
	PerPlayer   map[int]PlayerTally `json:"players"`
	SharedTally PlayerTally         `json:"shared_tally"`
}

// NewEntry returns an empty entry of the given kind with no winner.
func NewEntry(kind Kind) *Entry {
	return &Entry{Kind: kind, Winner: Shared, PerPlayer: make(map[int]PlayerTally)}
}

// Losses returns the count seen by p. A shared entry answers with the
// shared tally no matter who asks; the shared reference always reads
// the shared tally.
func (e *Entry) Losses(p PlayerRef) int {
	if p.IsShared() || e.IsShared {
		return e.SharedTally.Losses
	}
	return e.PerPlayer[p.SeatIndex()].Losses
}

// PlayerLosses returns p's own counter even when the entry is shared.
// The shared reference still resolves to the shared tally.
func (e *Entry) PlayerLosses(p PlayerRef) int {
	if p.IsShared() {
		return e.SharedTally.Losses
	}
	return e.PerPlayer[p.SeatIndex()].Losses
}

// AddLosses adjusts the counter owned by p by delta, clamping at
// zero. A shared entry routes every seat's update into the shared
// tally so no count is stranded while the entry is shared.
func (e *Entry) AddLosses(p PlayerRef, delta int) {
	if p.IsShared() || e.IsShared {
		e.SharedTally.Losses = clampLosses(e.SharedTally.Losses + delta)
		return
	}
	e.setSeatLosses(p.SeatIndex(), e.PerPlayer[p.SeatIndex()].Losses+delta)
}

// SetLosses sets the counter owned by p, clamping at zero.
func (e *Entry) SetLosses(p PlayerRef, n int) {
	if p.IsShared() || e.IsShared {
		e.SharedTally.Losses = clampLosses(n)
		return
	}
	e.setSeatLosses(p.SeatIndex(), n)
}

func (e *Entry) setSeatLosses(seat, n int) {
	if e.PerPlayer == nil {
		e.PerPlayer = make(map[int]PlayerTally)
	}
	t := e.PerPlayer[seat]
	t.Losses = clampLosses(n)
	e.PerPlayer[seat] = t
}

// TotalLosses sums what the entry currently charges: the shared tally
// for shared entries, every seat's counter otherwise.
func (e *Entry) TotalLosses() int {
	if e.IsShared {
		return e.SharedTally.Losses
	}
	total := 0
	for _, t := range e.PerPlayer {
		total += t.Losses
	}
	return total
}

// Repair brings the entry back to a structurally valid state for the
// given player count: a tally slot for every configured seat, no
// negative counters, a known kind. It reports whether anything had to
// change, meaning the caller should persist the document again.
func (e *Entry) Repair(playerCount int) bool {
	changed := false
	if e.PerPlayer == nil {
		e.PerPlayer = make(map[int]PlayerTally)
		changed = true
	}
	for i := 0; i < playerCount; i++ {
		if _, ok := e.PerPlayer[i]; !ok {
			e.PerPlayer[i] = PlayerTally{}
			changed = true
		}
	}
	for seat, t := range e.PerPlayer {
		if t.Losses < 0 {
			t.Losses = 0
			e.PerPlayer[seat] = t
			changed = true
		}
	}
	if e.SharedTally.Losses < 0 {
		e.SharedTally.Losses = 0
		changed = true
	}
	if !e.Kind.Valid() {
		e.Kind = KindSpirit
		changed = true
	}
	return changed
}

func clampLosses(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

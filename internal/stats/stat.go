// Package stats is the tally engine: every stat is a Definition value
// holding fold and finalize steps over a shared accumulator shape,
// and one generic driver folds the battle log through it.
package stats

import (
	"math"
	"strconv"

	"github.com/tovenaar/spirit-tracker/internal/battlelog"
	"github.com/tovenaar/spirit-tracker/internal/spirit"
)

// Mode selects how a stat lays out its result slots.
type Mode int

const (
	// Comparison folds once per configured player and is displayed as
	// a side-by-side ranking.
	Comparison Mode = iota
	// Single folds once per entry into the shared slot only.
	Single
)

func (m Mode) String() string {
	if m == Single {
		return "Single"
	}
	return "Comparison"
}

// Context carries one applicable entry into a fold step.
type Context struct {
	Slot   battlelog.PlayerRef
	Key    string
	Name   string
	Entry  *battlelog.Entry
	Record *spirit.Record
}

// Accumulator is the working state every stat folds into: a running
// total and a qualifying count per slot, plus per-key counters for
// the commonality stats.
type Accumulator struct {
	Totals map[battlelog.PlayerRef]float64
	Counts map[battlelog.PlayerRef]int
	Keyed  map[battlelog.PlayerRef]map[string]int
}

func newAccumulator() *Accumulator {
	return &Accumulator{
		Totals: make(map[battlelog.PlayerRef]float64),
		Counts: make(map[battlelog.PlayerRef]int),
		Keyed:  make(map[battlelog.PlayerRef]map[string]int),
	}
}

// Add grows the slot's running total.
func (a *Accumulator) Add(slot battlelog.PlayerRef, v float64) {
	a.Totals[slot] += v
}

// Count bumps the slot's qualifying-entry count.
func (a *Accumulator) Count(slot battlelog.PlayerRef) {
	a.Counts[slot]++
}

// AddKeyed grows the slot's counter for one commonality key.
func (a *Accumulator) AddKeyed(slot battlelog.PlayerRef, key string, n int) {
	m := a.Keyed[slot]
	if m == nil {
		m = make(map[string]int)
		a.Keyed[slot] = m
	}
	m[key] += n
}

// Definition describes one stat as plain data: metadata for display,
// predicates that gate entries, and the fold/finalize steps.
type Definition struct {
	ID    string
	Title string
	Mode  Mode
	// HigherIsBetter drives comparison highlighting; loss-style stats
	// flip it.
	HigherIsBetter bool
	// Applies gates entries before the injected filter; nil admits
	// everything.
	Applies func(e *battlelog.Entry, r *spirit.Record) bool
	// Filter is the caller-provided predicate; nil passes.
	Filter Filter
	// Fold records one applicable entry for one slot.
	Fold func(a *Accumulator, c Context)
	// Finalize overrides the default rendering for one slot; nil uses
	// the accumulated total with the standard number format.
	Finalize func(a *Accumulator, slot battlelog.PlayerRef) (float64, string)
}

// SlotResult is one finalized result slot.
type SlotResult struct {
	Slot       battlelog.PlayerRef
	PlayerName string
	Value      float64
	Display    string
}

// Result is an immutable tally outcome: one slot per configured
// player in seat order, the shared slot last.
type Result struct {
	ID             string
	Title          string
	Mode           Mode
	HigherIsBetter bool
	Slots          []SlotResult
}

// PlayerSlots returns the per-seat slots without the shared one.
func (r *Result) PlayerSlots() []SlotResult {
	if len(r.Slots) == 0 {
		return nil
	}
	return r.Slots[:len(r.Slots)-1]
}

// SharedSlot returns the trailing shared slot.
func (r *Result) SharedSlot() SlotResult {
	if len(r.Slots) == 0 {
		return SlotResult{Slot: battlelog.Shared, PlayerName: "Shared"}
	}
	return r.Slots[len(r.Slots)-1]
}

// Tally folds the whole log through def once. The log and catalog are
// read only for the duration; the catalog may be nil when no metadata
// is available.
func Tally(def *Definition, log *battlelog.Log, catalog *spirit.Catalog) *Result {
	acc := newAccumulator()

	log.Each(func(key string, e *battlelog.Entry) {
		var rec *spirit.Record
		if catalog != nil {
			rec = catalog.Lookup(key)
		}
		if def.Applies != nil && !def.Applies(e, rec) {
			return
		}
		if def.Filter != nil && !def.Filter.Match(e, rec) {
			return
		}
		ctx := Context{Key: key, Name: resolveName(key, e, rec), Entry: e, Record: rec}
		if def.Mode == Single {
			ctx.Slot = battlelog.Shared
			def.Fold(acc, ctx)
			return
		}
		for seat := 0; seat < log.PlayerCount(); seat++ {
			ctx.Slot = battlelog.Seat(seat)
			def.Fold(acc, ctx)
		}
	})

	result := &Result{
		ID:             def.ID,
		Title:          def.Title,
		Mode:           def.Mode,
		HigherIsBetter: def.HigherIsBetter,
	}
	slots := make([]battlelog.PlayerRef, 0, log.PlayerCount()+1)
	for seat := 0; seat < log.PlayerCount(); seat++ {
		slots = append(slots, battlelog.Seat(seat))
	}
	slots = append(slots, battlelog.Shared)
	for _, slot := range slots {
		value, display := finalizeSlot(def, acc, slot)
		result.Slots = append(result.Slots, SlotResult{
			Slot:       slot,
			PlayerName: log.PlayerName(slot),
			Value:      value,
			Display:    display,
		})
	}
	return result
}

// TallyAll runs every definition over the same log and catalog.
func TallyAll(defs []*Definition, log *battlelog.Log, catalog *spirit.Catalog) []*Result {
	results := make([]*Result, 0, len(defs))
	for _, def := range defs {
		results = append(results, Tally(def, log, catalog))
	}
	return results
}

func finalizeSlot(def *Definition, acc *Accumulator, slot battlelog.PlayerRef) (float64, string) {
	if def.Finalize != nil {
		return def.Finalize(acc, slot)
	}
	v := acc.Totals[slot]
	return v, FormatValue(v)
}

// resolveName picks the display name for an entry, preferring catalog
// metadata over whatever the log stored.
func resolveName(key string, e *battlelog.Entry, rec *spirit.Record) string {
	if rec != nil && rec.DisplayName != "" {
		return rec.DisplayName
	}
	if e != nil && e.DisplayName != "" {
		return e.DisplayName
	}
	return key
}

// valueEpsilon is the cutoff under which a fractional part is treated
// as floating-point noise and the value rendered as an integer.
const valueEpsilon = 1e-9

// FormatValue renders a stat value: whole numbers plain, everything
// else with two decimals.
func FormatValue(v float64) string {
	if math.Abs(v-math.Round(v)) < valueEpsilon {
		return strconv.FormatInt(int64(math.Round(v)), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

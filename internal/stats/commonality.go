package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tovenaar/spirit-tracker/internal/battlelog"
	"github.com/tovenaar/spirit-tracker/internal/spirit"
)

// commonalityDisplayCap bounds how many tied keys a ranking label
// spells out before trailing off.
const commonalityDisplayCap = 15

// CommonalityOptions select which slice of a ranking a stat reports.
type CommonalityOptions struct {
	// MostCommon walks the ranking from the largest counts down;
	// otherwise from the smallest counts up.
	MostCommon bool
	// Rank is the 1-based position in the ranking of distinct
	// counts. Rank 1 with MostCommon is the top of the table.
	Rank int
	// MinCount drops keys seen fewer times from the ranking
	// entirely. Clamps to one.
	MinCount int
}

// CommonSeries ranks the series of won battles by win count.
func CommonSeries(filter Filter, opts CommonalityOptions) *Definition {
	key := func(e *battlelog.Entry, r *spirit.Record) (string, bool) {
		if r == nil || r.Series == nil || *r.Series == "" {
			return "", false
		}
		return *r.Series, true
	}
	installKeyFunc(filter, key)
	return &Definition{
		ID:             commonalityID("series", opts),
		Title:          commonalityTitle("Most common series won", "Least common series won", opts),
		Mode:           Comparison,
		HigherIsBetter: opts.MostCommon,
		Filter:         filter,
		Applies: func(e *battlelog.Entry, r *spirit.Record) bool {
			_, ok := key(e, r)
			return ok
		},
		Fold: func(a *Accumulator, c Context) {
			if !wonBy(c.Entry, c.Slot) {
				return
			}
			k, ok := key(c.Entry, c.Record)
			if !ok {
				return
			}
			a.AddKeyed(c.Slot, k, 1)
		},
		Finalize: func(a *Accumulator, slot battlelog.PlayerRef) (float64, string) {
			return 0, rankLabel(a.Keyed[slot], opts)
		},
	}
}

// CommonAbility ranks the abilities of won battles by win count.
func CommonAbility(filter Filter, opts CommonalityOptions) *Definition {
	key := func(e *battlelog.Entry, r *spirit.Record) (string, bool) {
		if r == nil || r.Ability == nil || *r.Ability == "" {
			return "", false
		}
		return *r.Ability, true
	}
	installKeyFunc(filter, key)
	return &Definition{
		ID:             commonalityID("ability", opts),
		Title:          commonalityTitle("Most common ability won", "Least common ability won", opts),
		Mode:           Comparison,
		HigherIsBetter: opts.MostCommon,
		Filter:         filter,
		Applies: func(e *battlelog.Entry, r *spirit.Record) bool {
			_, ok := key(e, r)
			return ok
		},
		Fold: func(a *Accumulator, c Context) {
			if !wonBy(c.Entry, c.Slot) {
				return
			}
			k, ok := key(c.Entry, c.Record)
			if !ok {
				return
			}
			a.AddKeyed(c.Slot, k, 1)
		},
		Finalize: func(a *Accumulator, slot battlelog.PlayerRef) (float64, string) {
			return 0, rankLabel(a.Keyed[slot], opts)
		},
	}
}

// ToughestBattle ranks entries by the losses they charged. The
// ranking always walks from the costliest entry down; Rank and
// MinCount still apply.
func ToughestBattle(filter Filter, opts CommonalityOptions) *Definition {
	opts.MostCommon = true
	installKeyFunc(filter, func(e *battlelog.Entry, r *spirit.Record) (string, bool) {
		if r != nil && r.DisplayName != "" {
			return r.DisplayName, true
		}
		if e != nil && e.DisplayName != "" {
			return e.DisplayName, true
		}
		return "", false
	})
	return &Definition{
		ID:             commonalityID("toughest_battles", opts),
		Title:          commonalityTitle("Toughest battles", "Toughest battles", opts),
		Mode:           Comparison,
		HigherIsBetter: false,
		Filter:         filter,
		Fold: func(a *Accumulator, c Context) {
			losses := c.Entry.Losses(c.Slot)
			if losses > 0 {
				a.AddKeyed(c.Slot, c.Name, losses)
			}
		},
		Finalize: func(a *Accumulator, slot battlelog.PlayerRef) (float64, string) {
			return 0, rankLabel(a.Keyed[slot], opts)
		},
	}
}

func installKeyFunc(filter Filter, fn KeyFunc) {
	if cf, ok := filter.(*CommonalityFilter); ok {
		cf.SetKeyFunc(fn)
	}
}

func commonalityID(base string, opts CommonalityOptions) string {
	dir := "least_common"
	if opts.MostCommon {
		dir = "most_common"
	}
	id := base + "_" + dir
	if base == "toughest_battles" {
		id = base
	}
	if opts.Rank > 1 {
		id = fmt.Sprintf("%s_%d", id, opts.Rank)
	}
	return id
}

func commonalityTitle(most, least string, opts CommonalityOptions) string {
	t := least
	if opts.MostCommon {
		t = most
	}
	if opts.Rank > 1 {
		t = fmt.Sprintf("%s (#%d)", t, opts.Rank)
	}
	return t
}

// rankLabel renders one rank of a keyed counter as "(count) key,
// key". Ranks count distinct values, so ties share a rank and are
// all reported, sorted, capped at commonalityDisplayCap.
func rankLabel(counts map[string]int, opts CommonalityOptions) string {
	type kv struct {
		key   string
		count int
	}
	entries := make([]kv, 0, len(counts))
	for k, v := range counts {
		entries = append(entries, kv{k, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count < entries[j].count
		}
		return entries[i].key < entries[j].key
	})

	targetRank := opts.Rank
	if targetRank < 1 {
		targetRank = 1
	}
	minCount := opts.MinCount
	if minCount < 1 {
		minCount = 1
	}

	order := make([]int, 0, len(entries))
	if opts.MostCommon {
		for i := len(entries) - 1; i >= 0; i-- {
			order = append(order, i)
		}
	} else {
		for i := range entries {
			order = append(order, i)
		}
	}

	var (
		ties      []string
		tieCount  int
		rank      int
		lastCount = -1
	)
	for _, i := range order {
		e := entries[i]
		if e.count < minCount {
			if opts.MostCommon {
				break
			}
			continue
		}
		if e.count != lastCount {
			rank++
			lastCount = e.count
		}
		if rank < targetRank {
			continue
		}
		if rank > targetRank {
			break
		}
		ties = append(ties, e.key)
		tieCount = e.count
	}
	if len(ties) == 0 {
		return "-"
	}
	sort.Strings(ties)
	if len(ties) > commonalityDisplayCap {
		ties = append(ties[:commonalityDisplayCap], "…")
	}
	return fmt.Sprintf("(%d) %s", tieCount, strings.Join(ties, ", "))
}

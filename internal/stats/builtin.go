package stats

import (
	"github.com/tovenaar/spirit-tracker/internal/battlelog"
	"github.com/tovenaar/spirit-tracker/internal/spirit"
)

// wonBy reports whether slot takes win credit for e. A shared entry
// with any recorded winner is a win for the whole table.
func wonBy(e *battlelog.Entry, slot battlelog.PlayerRef) bool {
	if e.IsShared {
		return !e.Winner.IsShared()
	}
	return !slot.IsShared() && e.Winner == slot
}

// countsFor reports whether slot participated in e: its recorded
// winner, or any seat of a shared battle.
func countsFor(e *battlelog.Entry, slot battlelog.PlayerRef) bool {
	return e.IsShared || (!slot.IsShared() && e.Winner == slot)
}

// BattlesTotal counts every attempt: one for the win (or the shared
// participation) plus the raw loss count.
func BattlesTotal(filter Filter) *Definition {
	return &Definition{
		ID:             "battles_total",
		Title:          "Total battles",
		Mode:           Comparison,
		HigherIsBetter: true,
		Filter:         filter,
		Fold: func(a *Accumulator, c Context) {
			v := float64(c.Entry.Losses(c.Slot))
			if countsFor(c.Entry, c.Slot) {
				v++
			}
			a.Add(c.Slot, v)
		},
	}
}

// BattlesUnique counts entries touched at all: won, shared, or lost
// against, never more than once per entry.
func BattlesUnique(filter Filter) *Definition {
	return &Definition{
		ID:             "battles_unique",
		Title:          "Unique battles",
		Mode:           Comparison,
		HigherIsBetter: true,
		Filter:         filter,
		Fold: func(a *Accumulator, c Context) {
			if countsFor(c.Entry, c.Slot) || c.Entry.Losses(c.Slot) > 0 {
				a.Add(c.Slot, 1)
			}
		},
	}
}

// BattlesWon counts wins; the first-try variant only those without a
// single loss for that slot.
func BattlesWon(filter Filter, firstTry bool) *Definition {
	id, title := "battles_won", "Battles won"
	if firstTry {
		id, title = "battles_won_first_try", "Battles won first try"
	}
	return &Definition{
		ID:             id,
		Title:          title,
		Mode:           Comparison,
		HigherIsBetter: true,
		Filter:         filter,
		Fold: func(a *Accumulator, c Context) {
			if !wonBy(c.Entry, c.Slot) {
				return
			}
			if firstTry && c.Entry.Losses(c.Slot) > 0 {
				return
			}
			a.Add(c.Slot, 1)
		},
	}
}

// SoloWins counts wins where nobody else even lost an attempt.
func SoloWins(filter Filter, firstTry bool) *Definition {
	id, title := "solo_wins", "Solo wins"
	if firstTry {
		id, title = "solo_wins_first_try", "Solo wins first try"
	}
	return &Definition{
		ID:             id,
		Title:          title,
		Mode:           Comparison,
		HigherIsBetter: true,
		Filter:         filter,
		Fold: func(a *Accumulator, c Context) {
			if soloWin(c.Entry, c.Slot, firstTry) {
				a.Add(c.Slot, 1)
			}
		},
	}
}

func soloWin(e *battlelog.Entry, slot battlelog.PlayerRef, firstTry bool) bool {
	if e.IsShared || slot.IsShared() || e.Winner != slot {
		return false
	}
	if firstTry && e.Losses(slot) > 0 {
		return false
	}
	for seat, tally := range e.PerPlayer {
		if seat == slot.SeatIndex() {
			continue
		}
		if tally.Losses > 0 {
			return false
		}
	}
	return true
}

// LossesTotal sums raw losses. Lower is better.
func LossesTotal(filter Filter) *Definition {
	return &Definition{
		ID:             "losses_total",
		Title:          "Total losses",
		Mode:           Comparison,
		HigherIsBetter: false,
		Filter:         filter,
		Fold: func(a *Accumulator, c Context) {
			a.Add(c.Slot, float64(c.Entry.Losses(c.Slot)))
		},
	}
}

// LossesUnique counts entries lost against at least once. Lower is
// better.
func LossesUnique(filter Filter) *Definition {
	return &Definition{
		ID:             "losses_unique",
		Title:          "Unique losses",
		Mode:           Comparison,
		HigherIsBetter: false,
		Filter:         filter,
		Fold: func(a *Accumulator, c Context) {
			if c.Entry.Losses(c.Slot) > 0 {
				a.Add(c.Slot, 1)
			}
		},
	}
}

// SaviorWins counts wins claimed after everyone else had already lost
// at least minLosses attempts. minLosses clamps to one: a savior
// needs somebody to save.
func SaviorWins(filter Filter, minLosses int, firstTry bool) *Definition {
	if minLosses < 1 {
		minLosses = 1
	}
	id, title := "savior_wins", "Savior wins"
	if firstTry {
		id, title = "savior_wins_first_try", "Savior wins first try"
	}
	return &Definition{
		ID:             id,
		Title:          title,
		Mode:           Comparison,
		HigherIsBetter: true,
		Filter:         filter,
		Fold: func(a *Accumulator, c Context) {
			if saviorWin(c.Entry, c.Slot, minLosses, firstTry) {
				a.Add(c.Slot, 1)
			}
		},
	}
}

func saviorWin(e *battlelog.Entry, slot battlelog.PlayerRef, minLosses int, firstTry bool) bool {
	if e.IsShared || slot.IsShared() || e.Winner != slot {
		return false
	}
	if firstTry && e.Losses(slot) > 0 {
		return false
	}
	for seat, tally := range e.PerPlayer {
		if seat == slot.SeatIndex() {
			continue
		}
		if tally.Losses < minLosses {
			return false
		}
	}
	return true
}

// PowerWon sums (or averages) the battle power of won battles,
// skipping entries whose record has no power.
func PowerWon(filter Filter, average bool) *Definition {
	id, title := "power_won_total", "Total power defeated"
	if average {
		id, title = "power_won_average", "Average power defeated"
	}
	return numericWonStat(id, title, filter, average, func(r *spirit.Record) *int {
		return r.BattlePower
	})
}

// RankWon sums (or averages) the class rank of won battles, skipping
// entries whose record has no rank.
func RankWon(filter Filter, average bool) *Definition {
	id, title := "rank_won_total", "Total class rank defeated"
	if average {
		id, title = "rank_won_average", "Average class rank defeated"
	}
	return numericWonStat(id, title, filter, average, func(r *spirit.Record) *int {
		return r.ClassRank
	})
}

func numericWonStat(id, title string, filter Filter, average bool, field func(r *spirit.Record) *int) *Definition {
	def := &Definition{
		ID:             id,
		Title:          title,
		Mode:           Comparison,
		HigherIsBetter: true,
		Filter:         filter,
		Applies: func(e *battlelog.Entry, r *spirit.Record) bool {
			return r != nil && field(r) != nil
		},
		Fold: func(a *Accumulator, c Context) {
			if !wonBy(c.Entry, c.Slot) {
				return
			}
			a.Add(c.Slot, float64(*field(c.Record)))
			a.Count(c.Slot)
		},
	}
	if average {
		def.Finalize = func(a *Accumulator, slot battlelog.PlayerRef) (float64, string) {
			n := a.Counts[slot]
			if n == 0 {
				return 0, FormatValue(0)
			}
			v := a.Totals[slot] / float64(n)
			return v, FormatValue(v)
		}
	}
	return def
}

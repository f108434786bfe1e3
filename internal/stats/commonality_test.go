package stats

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/tovenaar/spirit-tracker/internal/battlelog"
	"github.com/tovenaar/spirit-tracker/internal/spirit"
)

func TestRankLabel(t *testing.T) {
	twoTied := map[string]int{"a": 5, "b": 5, "c": 3}
	midTied := map[string]int{"a": 5, "b": 3, "c": 3, "d": 1}
	spread := map[string]int{"a": 5, "b": 3, "c": 1}

	tests := []struct {
		name   string
		counts map[string]int
		opts   CommonalityOptions
		want   string
	}{
		{"top tie reported together", twoTied, CommonalityOptions{MostCommon: true, Rank: 1, MinCount: 1}, "(5) a, b"},
		{"second rank skips the whole tie", midTied, CommonalityOptions{MostCommon: true, Rank: 2, MinCount: 1}, "(3) b, c"},
		{"least common", midTied, CommonalityOptions{Rank: 1, MinCount: 1}, "(1) d"},
		{"min count drops the tail", midTied, CommonalityOptions{Rank: 1, MinCount: 2}, "(3) b, c"},
		{"least common second rank", midTied, CommonalityOptions{Rank: 2, MinCount: 1}, "(3) b, c"},
		{"min count empties ranking", map[string]int{"a": 3, "b": 2}, CommonalityOptions{MostCommon: true, Rank: 1, MinCount: 4}, "-"},
		{"empty counter", map[string]int{}, CommonalityOptions{MostCommon: true, Rank: 1, MinCount: 1}, "-"},
		{"third rank", spread, CommonalityOptions{MostCommon: true, Rank: 3, MinCount: 1}, "(1) c"},
		{"rank past the end", spread, CommonalityOptions{MostCommon: true, Rank: 4, MinCount: 1}, "-"},
		{"zero options default to rank one", map[string]int{"a": 2, "b": 1}, CommonalityOptions{MostCommon: true}, "(2) a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rankLabel(tt.counts, tt.opts); got != tt.want {
				t.Errorf("rankLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRankLabelDisplayCap(t *testing.T) {
	counts := map[string]int{"straggler": 1}
	keys := make([]string, 0, 16)
	for i := 1; i <= 16; i++ {
		k := fmt.Sprintf("k%02d", i)
		counts[k] = 2
		keys = append(keys, k)
	}
	sort.Strings(keys)

	got := rankLabel(counts, CommonalityOptions{MostCommon: true, Rank: 1, MinCount: 1})
	want := "(2) " + strings.Join(keys[:commonalityDisplayCap], ", ") + ", …"
	if got != want {
		t.Errorf("capped label = %q, want %q", got, want)
	}
}

func TestCommonSeries(t *testing.T) {
	catalog := spirit.NewCatalog()
	catalog.Put("A1", &spirit.Record{DisplayName: "A1", Series: stringPtr("Alpha")})
	catalog.Put("A2", &spirit.Record{DisplayName: "A2", Series: stringPtr("Alpha")})
	catalog.Put("B1", &spirit.Record{DisplayName: "B1", Series: stringPtr("Beta")})
	catalog.Put("C1", &spirit.Record{DisplayName: "C1"})

	log := twoPlayerLog()
	for _, name := range []string{"A1", "A2", "B1", "C1"} {
		addBattle(t, log, name, battlelog.Seat(0), false)
	}

	def := CommonSeries(nil, CommonalityOptions{MostCommon: true, Rank: 1, MinCount: 1})
	if def.ID != "series_most_common" {
		t.Errorf("ID = %q, want series_most_common", def.ID)
	}
	result := Tally(def, log, catalog)

	mario := slotFor(t, result, battlelog.Seat(0))
	if mario.Display != "(2) Alpha" {
		t.Errorf("seat 0 display = %q, want %q", mario.Display, "(2) Alpha")
	}
	if mario.Value != 0 {
		t.Errorf("commonality value = %v, want 0", mario.Value)
	}
	if got := slotFor(t, result, battlelog.Seat(1)).Display; got != "-" {
		t.Errorf("seat 1 display = %q, want %q", got, "-")
	}
	if got := slotFor(t, result, battlelog.Shared).Display; got != "-" {
		t.Errorf("shared display = %q, want %q", got, "-")
	}
}

func TestCommonSeriesExclusion(t *testing.T) {
	catalog := spirit.NewCatalog()
	catalog.Put("A1", &spirit.Record{DisplayName: "A1", Series: stringPtr("Alpha")})
	catalog.Put("A2", &spirit.Record{DisplayName: "A2", Series: stringPtr("Alpha")})
	catalog.Put("B1", &spirit.Record{DisplayName: "B1", Series: stringPtr("Beta")})

	log := twoPlayerLog()
	for _, name := range []string{"A1", "A2", "B1"} {
		addBattle(t, log, name, battlelog.Seat(0), false)
	}

	filter := &CommonalityFilter{Exclude: []string{"ALPHA"}}
	def := CommonSeries(filter, CommonalityOptions{MostCommon: true, Rank: 1, MinCount: 1})
	result := Tally(def, log, catalog)

	if got := slotFor(t, result, battlelog.Seat(0)).Display; got != "(1) Beta" {
		t.Errorf("excluded-series display = %q, want %q", got, "(1) Beta")
	}
}

func TestCommonAbility(t *testing.T) {
	catalog := spirit.NewCatalog()
	catalog.Put("N1", &spirit.Record{DisplayName: "N1", Ability: stringPtr("None")})
	catalog.Put("N2", &spirit.Record{DisplayName: "N2", Ability: stringPtr("None")})
	catalog.Put("S1", &spirit.Record{DisplayName: "S1", Ability: stringPtr("Super Armor")})

	log := twoPlayerLog()
	for _, name := range []string{"N1", "N2", "S1"} {
		addBattle(t, log, name, battlelog.Seat(0), false)
	}

	most := Tally(CommonAbility(nil, CommonalityOptions{MostCommon: true, Rank: 1, MinCount: 1}), log, catalog)
	least := Tally(CommonAbility(nil, CommonalityOptions{Rank: 1, MinCount: 1}), log, catalog)

	if got := slotFor(t, most, battlelog.Seat(0)).Display; got != "(2) None" {
		t.Errorf("most common ability = %q, want %q", got, "(2) None")
	}
	if got := slotFor(t, least, battlelog.Seat(0)).Display; got != "(1) Super Armor" {
		t.Errorf("least common ability = %q, want %q", got, "(1) Super Armor")
	}
}

func TestToughestBattle(t *testing.T) {
	log := twoPlayerLog()
	addBattle(t, log, "Hard One", battlelog.Seat(0), false)
	log.UpdateLoss("Hard One", battlelog.Seat(0), 4)
	addBattle(t, log, "Easy", battlelog.Seat(0), false)
	log.UpdateLoss("Easy", battlelog.Seat(0), 1)
	addBattle(t, log, "Won Clean", battlelog.Seat(0), false)

	first := Tally(ToughestBattle(nil, CommonalityOptions{Rank: 1, MinCount: 1}), log, nil)
	second := Tally(ToughestBattle(nil, CommonalityOptions{Rank: 2, MinCount: 1}), log, nil)

	if got := slotFor(t, first, battlelog.Seat(0)).Display; got != "(4) Hard One" {
		t.Errorf("toughest = %q, want %q", got, "(4) Hard One")
	}
	if got := slotFor(t, second, battlelog.Seat(0)).Display; got != "(1) Easy" {
		t.Errorf("second toughest = %q, want %q", got, "(1) Easy")
	}
	if got := slotFor(t, first, battlelog.Seat(1)).Display; got != "-" {
		t.Errorf("lossless seat = %q, want %q", got, "-")
	}
}

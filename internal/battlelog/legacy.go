package battlelog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// legacySeatOrder is the fixed three-player enumeration the version 0
// format used as loss-map keys.
var legacySeatOrder = []string{"M", "S", "P"}

type legacyEntry struct {
	Kind   int            `json:"kind"`
	Winner int            `json:"winner"`
	Shared bool           `json:"shared"`
	Losses map[string]int `json:"losses"`
}

type legacyDocument struct {
	Version int                    `json:"version"`
	Entries map[string]legacyEntry `json:"entries"`
}

// DetectVersion reads the schema stamp off a raw document without
// decoding the rest of it.
func DetectVersion(raw []byte) (int, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return 0, fmt.Errorf("read document version: %w", err)
	}
	return probe.Version, nil
}

// MigrateV0 converts a version 0 document into a current log built
// around playerNames. The old format hard-coded three players keyed
// by initial and counted winners from one with zero meaning "none";
// losses are re-homed onto the new roster by matching initials first
// and falling back to the fixed legacy order. Counters with no home
// are dropped, each with a warning, rather than failing the whole
// migration.
func MigrateV0(raw []byte, playerNames []string) (*Log, []string, error) {
	var doc legacyDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode legacy document: %w", err)
	}
	if doc.Version != 0 {
		return nil, nil, fmt.Errorf("document version %d is not a legacy document", doc.Version)
	}
	if len(playerNames) == 0 {
		playerNames = legacySeatOrder
	}

	log := NewLog(playerNames)
	var warnings []string

	names := make([]string, 0, len(doc.Entries))
	for name := range doc.Entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		old := doc.Entries[name]
		e := NewEntry(Kind(old.Kind))
		if !e.Kind.Valid() {
			warnings = append(warnings, fmt.Sprintf("%s: unknown kind %d, keeping as %s", name, old.Kind, KindSpirit))
			e.Kind = KindSpirit
		}
		if old.Winner > 0 {
			e.Winner = Seat(old.Winner - 1)
		}

		// Per-seat counters land first, while the entry is still
		// individual; the shared flag flips afterwards so a shared
		// legacy entry keeps its per-seat history frozen underneath.
		letters := make([]string, 0, len(old.Losses))
		for letter := range old.Losses {
			letters = append(letters, letter)
		}
		sort.Strings(letters)
		for _, letter := range letters {
			seat := seatForInitial(letter, playerNames)
			if seat < 0 {
				warnings = append(warnings, fmt.Sprintf("%s: no player for legacy counter %q, dropping %d losses", name, letter, old.Losses[letter]))
				continue
			}
			e.SetLosses(Seat(seat), old.Losses[letter])
		}
		if old.Shared {
			e.IsShared = true
			// The old format mirrored the shared count across its
			// letter counters; the largest one is the shared tally.
			for _, n := range old.Losses {
				if n > e.SharedTally.Losses {
					e.SharedTally.Losses = n
				}
			}
		}

		log.AddOrUpdate(name, e)
	}

	log.LastAdded = ""
	log.Validate()
	return log, warnings, nil
}

// seatForInitial finds the seat a legacy counter letter belongs to:
// the first player whose name starts with that letter, else the
// letter's position in the fixed legacy order if the roster reaches
// that far, else -1.
func seatForInitial(letter string, players []string) int {
	r := firstRune(letter)
	if r != 0 {
		for i, name := range players {
			if unicode.ToLower(firstRune(name)) == unicode.ToLower(r) {
				return i
			}
		}
	}
	for i, l := range legacySeatOrder {
		if strings.EqualFold(l, letter) && i < len(players) {
			return i
		}
	}
	return -1
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tovenaar/spirit-tracker/internal/spirit"
)

// Tag delimiters of the battle tables.
const (
	nameTag = "{{name"
	typeTag = "{{type"
)

type scanState int

const (
	seekName scanState = iota
	seekAffinity
	seekPower
)

// BattleScanOptions selects between the two battle-table variants.
type BattleScanOptions struct {
	// ForceFighter stamps every scanned entity as a fighter with the
	// fixed fighter battle flags: fought in the campaign, no board
	// battle, never a reward.
	ForceFighter bool
	// WarnOnMiss reports names the catalog does not know. The spirit
	// table is additive detail for roster entities, so a miss there is
	// suspicious; the fighter table is expected to introduce names.
	WarnOnMiss bool
}

// SpiritBattles are the options for the spirit battle table.
func SpiritBattles() BattleScanOptions {
	return BattleScanOptions{WarnOnMiss: true}
}

// FighterBattles are the options for the fighter battle table.
func FighterBattles() BattleScanOptions {
	return BattleScanOptions{ForceFighter: true}
}

// ScanBattles runs the battle-affinity scanner over src: a three-state
// machine that finds a name tag, then an affinity tag, then the first
// power number, and emits a patch record per entity. catalog is read
// only; it decides which fields are still open, since affinity and
// power only land on records that do not have them yet. Unknown names
// still produce a record so the battle tables work stand-alone.
func ScanBattles(src *Source, catalog *spirit.Catalog, opts BattleScanOptions) ([]ParsedRecord, []Warning) {
	var (
		records  []ParsedRecord
		warnings []Warning
		state    = seekName
		name     string
		key      string
		affinity spirit.Affinity
	)

	// seen accumulates this scan's own commits so a name appearing
	// twice stays first-writer even before the caller merges anything.
	seen := make(map[string]*spirit.Record)
	view := func(k string) *spirit.Record {
		if r, ok := seen[k]; ok {
			return r
		}
		if catalog != nil {
			if r := catalog.Lookup(k); r != nil {
				c := r.Clone()
				seen[k] = c
				return c
			}
		}
		return nil
	}

	for i, raw := range src.Lines {
		line := stripRowMerge(raw)
		switch state {
		case seekName:
			v, ok := tagValue(line, nameTag)
			if !ok {
				continue
			}
			name = v
			key = spirit.Sanitize(v)
			if view(key) == nil && opts.WarnOnMiss {
				warnings = append(warnings, Warning{Source: src.Name, Line: i + 1, Msg: fmt.Sprintf("battle row for %q, which no roster row produced", v)})
			}
			state = seekAffinity

		case seekAffinity:
			v, ok := tagValue(line, typeTag)
			if !ok {
				continue
			}
			a, known := spirit.ParseAffinity(v)
			if !known {
				warnings = append(warnings, Warning{Source: src.Name, Line: i + 1, Msg: fmt.Sprintf("unknown affinity %q for %q", v, name)})
				state = seekName
				continue
			}
			affinity = a
			state = seekPower

		case seekPower:
			power, ok := firstInteger(line)
			if !ok {
				continue
			}
			if patch := battlePatch(view(key), name, affinity, power, opts); patch != nil {
				records = append(records, ParsedRecord{Key: key, Record: patch})
				if cur := view(key); cur != nil {
					cur.Merge(patch)
				} else {
					seen[key] = patch.Clone()
				}
			}
			state = seekName
		}
	}
	return records, warnings
}

// battlePatch builds the record to merge for one scanned entity, nil
// when the catalog already has everything this row could add.
func battlePatch(existing *spirit.Record, name string, affinity spirit.Affinity, power int, opts BattleScanOptions) *spirit.Record {
	patch := &spirit.Record{}
	empty := true
	if existing == nil {
		patch.DisplayName = name
		empty = false
	}
	if existing == nil || existing.Affinity == nil {
		a := affinity
		patch.Affinity = &a
		empty = false
	}
	if existing == nil || existing.BattlePower == nil {
		p := power
		patch.BattlePower = &p
		empty = false
	}
	if opts.ForceFighter {
		u := spirit.UsageFighter
		patch.UsageType = &u
		patch.IsInCampaign = boolRef(true)
		patch.IsCampaignReward = boolRef(false)
		patch.HasBoardBattle = boolRef(false)
		empty = false
	}
	if empty {
		return nil
	}
	return patch
}

// stripRowMerge removes the row-merge attribute a continued table row
// starts with, so the tag tokens line up at their usual offsets.
func stripRowMerge(line string) string {
	if !strings.HasPrefix(line, sortKeySep) {
		return line
	}
	rest := line[1:]
	if !strings.HasPrefix(strings.TrimSpace(rest), rowMergeMarker) {
		return line
	}
	if i := strings.Index(rest, sortKeySep); i >= 0 {
		return sortKeySep + rest[i+1:]
	}
	return line
}

// tagValue reads the value of a {{tag|value}} cell. The tag sits in
// the second token and the value in the third; that is what the
// row-merge strip preserves.
func tagValue(line, tag string) (string, bool) {
	tokens := strings.Split(line, sortKeySep)
	if len(tokens) < 3 || !strings.Contains(tokens[1], tag) {
		return "", false
	}
	v := strings.Trim(tokens[2], " '{}")
	if v == "" {
		return "", false
	}
	return v, true
}

// firstInteger finds the first integer substring in line, tolerating
// thousands separators.
func firstInteger(line string) (int, bool) {
	s := strings.NewReplacer(",", "", " ", "").Replace(line)
	start := strings.IndexFunc(s, isASCIIDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

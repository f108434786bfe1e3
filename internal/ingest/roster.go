package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tovenaar/spirit-tracker/internal/spirit"
)

// Markup tokens of the roster table. The source is a hand-edited wiki
// page, so everything here is containment, not grammar.
const (
	fieldSep       = "||"
	sortKeySep     = "|"
	rowMergeMarker = "rowspan"
	yesToken       = "y"
	zeroSlotMarker = "0"

	bothMarker     = "both"
	boardMarker    = "board"
	campaignMarker = "light"
	rewardMarker   = "chest"
)

// Column layout of a roster row after splitting on the field
// separator. A merged series cell shifts everything after it by two.
const (
	colOrdinal = iota
	colName
	colUsage
	colSeries
	colBattle
	colRank
	colAffinity // unreliable here, the battle tables own this field
	colSlots
	colAbility // first non-skippable cell from here on
)

// rowMergeShift is how many filler cells a merged series cell drags in.
const rowMergeShift = 2

// ScanRoster runs the catalog-info scanner over src. Lines that are
// not table rows are ignored; rows that are rejected for structural
// reasons produce a warning, rows rejected because the entity has no
// battle or is a fighter are silently skipped.
func ScanRoster(src *Source) ([]ParsedRecord, []Warning) {
	var records []ParsedRecord
	var warnings []Warning
	for i, line := range src.Lines {
		rec, problem := parseRosterLine(line)
		if problem != "" {
			warnings = append(warnings, Warning{Source: src.Name, Line: i + 1, Msg: problem})
		}
		if rec != nil {
			records = append(records, ParsedRecord{Key: spirit.Sanitize(rec.DisplayName), Record: rec})
		}
	}
	return records, warnings
}

// parseRosterLine turns one candidate row into a record. A nil record
// with an empty problem string is a silent skip; a non-empty problem
// is worth a warning. Rows may come back partial: everything through
// the has-battle cell is mandatory, the rest is best effort.
func parseRosterLine(line string) (*spirit.Record, string) {
	if !strings.Contains(line, fieldSep) {
		return nil, ""
	}
	fields := splitFields(line)
	if len(fields) <= colBattle {
		return nil, fmt.Sprintf("row has %d fields, too short for a roster entry", len(fields))
	}

	rec := &spirit.Record{}
	if n, ok := parseOrdinal(fields[colOrdinal]); ok {
		rec.CollectionIndex = &n
	}

	rec.DisplayName = displayName(fields[colName])
	if rec.DisplayName == "" {
		return nil, "row has no usable name"
	}

	usage, ok := spirit.ParseUsageType(strings.TrimSpace(fields[colUsage]))
	if !ok {
		return nil, fmt.Sprintf("unrecognized usage type %q", strings.TrimSpace(fields[colUsage]))
	}
	if usage == spirit.UsageFighter {
		// Fighter rows carry no usable data here, the fighter battle
		// table is their source of truth.
		return nil, ""
	}
	rec.UsageType = &usage

	shift := 0
	if strings.Contains(fields[colSeries], rowMergeMarker) {
		// A merged series cell: the entity has no listed series and
		// the row carries filler cells that would corrupt the fixed
		// offsets below.
		shift = rowMergeShift
	} else if s := seriesName(fields[colSeries]); s != "" {
		rec.Series = &s
	}

	battleIdx := colBattle + shift
	if battleIdx >= len(fields) {
		return nil, "row ends before the battle column"
	}
	if !strings.Contains(strings.ToLower(fields[battleIdx]), yesToken) {
		return nil, ""
	}

	if usage == spirit.UsageMaster {
		// Master rows have no rank, slot or ability columns.
		return rec, ""
	}

	rankIdx := colRank + shift
	if rankIdx >= len(fields) {
		return rec, ""
	}
	rank := glyphCount(fields[rankIdx])
	rec.ClassRank = &rank

	slotIdx := colSlots + shift
	if slotIdx >= len(fields) {
		return rec, ""
	}
	slots := slotCount(fields[slotIdx])
	rec.SlotCount = &slots

	abilityIdx := colAbility + shift
	for abilityIdx < len(fields) && skippableCell(fields[abilityIdx]) {
		abilityIdx++
	}
	if abilityIdx >= len(fields) {
		return rec, ""
	}
	ability := strings.TrimSpace(fields[abilityIdx])
	rec.Ability = &ability

	parseLocation(rec, fields[abilityIdx+1:])
	return rec, ""
}

// parseLocation resolves the board/campaign/reward flags from the
// cells after the ability. Campaign-ness sometimes takes one extra
// cell to resolve; whatever cannot be resolved before the row ends
// stays unset.
func parseLocation(rec *spirit.Record, rest []string) {
	if len(rest) == 0 {
		return
	}
	first := strings.ToLower(rest[0])
	switch {
	case strings.Contains(first, bothMarker):
		rec.HasBoardBattle = boolRef(true)
		rec.IsInCampaign = boolRef(true)
		parseReward(rec, rest[1:])
	case strings.Contains(first, boardMarker):
		rec.HasBoardBattle = boolRef(true)
		rec.IsInCampaign = boolRef(false)
		rec.IsCampaignReward = boolRef(false)
	case strings.Contains(first, campaignMarker):
		rec.HasBoardBattle = boolRef(false)
		rec.IsInCampaign = boolRef(true)
		parseReward(rec, rest[1:])
	default:
		rec.HasBoardBattle = boolRef(false)
		if len(rest) < 2 {
			return
		}
		if strings.Contains(strings.ToLower(rest[1]), campaignMarker) {
			rec.IsInCampaign = boolRef(true)
			parseReward(rec, rest[2:])
		} else {
			// Neither board nor campaign: reward resolves to false
			// without looking any further.
			rec.IsInCampaign = boolRef(false)
			rec.IsCampaignReward = boolRef(false)
		}
	}
}

func parseReward(rec *spirit.Record, rest []string) {
	if len(rest) == 0 {
		return
	}
	rec.IsCampaignReward = boolRef(strings.Contains(strings.ToLower(rest[0]), rewardMarker))
}

// splitFields breaks a row into trimmed cells.
func splitFields(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, sortKeySep)
	fields := strings.Split(s, fieldSep)
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// displayName extracts the visible name from a name cell, dropping a
// sort-key attribute if the cell carries one.
func displayName(field string) string {
	s := field
	if i := strings.LastIndex(s, sortKeySep); i >= 0 {
		s = s[i+1:]
	}
	return strings.Trim(s, " '{}[]")
}

// seriesName strips the italics quoting wiki series cells use.
func seriesName(field string) string {
	return strings.Trim(field, " '")
}

// parseOrdinal pulls the digits out of the collection-number cell.
func parseOrdinal(field string) (int, bool) {
	n := 0
	seen := false
	for _, r := range field {
		if r < '0' || r > '9' {
			continue
		}
		n = n*10 + int(r-'0')
		seen = true
	}
	return n, seen
}

// glyphCount is the rank encoding: repeated icons, one per rank.
func glyphCount(field string) int {
	return utf8.RuneCountInString(strings.TrimSpace(field))
}

// slotCount counts slot glyphs, with a literal zero marker for
// slotless entities.
func slotCount(field string) int {
	f := strings.TrimSpace(field)
	if strings.Contains(f, zeroSlotMarker) {
		return 0
	}
	return utf8.RuneCountInString(f)
}

// skippableCell reports cells the ability scan walks straight over:
// formatting attributes and bare numbers.
func skippableCell(field string) bool {
	f := strings.TrimSpace(field)
	if f == "" {
		return true
	}
	low := strings.ToLower(f)
	if strings.Contains(low, "background") || strings.Contains(low, "bgcolor") {
		return true
	}
	return isNumericCell(f)
}

// isNumericCell reports whether the cell is digits once thousands
// separators and spaces are dropped.
func isNumericCell(f string) bool {
	seen := false
	for _, r := range f {
		switch {
		case r == ',' || r == ' ':
		case r >= '0' && r <= '9':
			seen = true
		default:
			return false
		}
	}
	return seen
}

func boolRef(b bool) *bool { return &b }

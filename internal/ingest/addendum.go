package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/tovenaar/spirit-tracker/internal/spirit"
)

// addendumFile is the TOML shape of a user override file: any number
// of [[spirit]] blocks, each a partial record keyed by name.
type addendumFile struct {
	Spirits []addendumEntry `toml:"spirit"`
}

type addendumEntry struct {
	Name      string  `toml:"name"`
	Display   *string `toml:"display"`
	Index     *int    `toml:"index"`
	Series    *string `toml:"series"`
	Ability   *string `toml:"ability"`
	Affinity  *string `toml:"affinity"`
	Usage     *string `toml:"usage"`
	ClassRank *int    `toml:"class_rank"`
	Slots     *int    `toml:"slots"`
	Power     *int    `toml:"power"`
	Board     *bool   `toml:"board"`
	Campaign  *bool   `toml:"campaign"`
	Reward    *bool   `toml:"reward"`
}

// ParseAddendum decodes one override file into record patches. A file
// that is not TOML costs a single warning; a block with a bad field
// keeps its good fields.
func ParseAddendum(name string, data []byte) ([]ParsedRecord, []Warning) {
	var file addendumFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, []Warning{{Source: name, Msg: fmt.Sprintf("not valid TOML: %v", err)}}
	}

	var records []ParsedRecord
	var warnings []Warning
	for i, e := range file.Spirits {
		key := spirit.Sanitize(e.Name)
		if key == "" {
			warnings = append(warnings, Warning{Source: name, Msg: fmt.Sprintf("spirit block %d has no name", i+1)})
			continue
		}

		rec := &spirit.Record{DisplayName: strings.TrimSpace(e.Name)}
		if e.Display != nil {
			rec.DisplayName = strings.TrimSpace(*e.Display)
		}
		rec.CollectionIndex = e.Index
		rec.Series = e.Series
		rec.Ability = e.Ability
		rec.ClassRank = e.ClassRank
		rec.SlotCount = e.Slots
		rec.BattlePower = e.Power
		rec.HasBoardBattle = e.Board
		rec.IsInCampaign = e.Campaign
		rec.IsCampaignReward = e.Reward

		if e.Affinity != nil {
			if a, ok := spirit.ParseAffinity(strings.TrimSpace(*e.Affinity)); ok {
				rec.Affinity = &a
			} else {
				warnings = append(warnings, Warning{Source: name, Msg: fmt.Sprintf("%s: unknown affinity %q", e.Name, *e.Affinity)})
			}
		}
		if e.Usage != nil {
			if u, ok := spirit.ParseUsageType(strings.TrimSpace(*e.Usage)); ok {
				rec.UsageType = &u
			} else {
				warnings = append(warnings, Warning{Source: name, Msg: fmt.Sprintf("%s: unknown usage type %q", e.Name, *e.Usage)})
			}
		}

		records = append(records, ParsedRecord{Key: key, Record: rec})
	}
	return records, warnings
}

// LoadAddenda reads every .toml file under dir in name order. A
// missing directory simply means no overrides.
func LoadAddenda(dir string) ([]ParsedRecord, []Warning, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read addendum directory: %w", err)
	}

	var records []ParsedRecord
	var warnings []Warning
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".toml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			warnings = append(warnings, Warning{Source: entry.Name(), Msg: fmt.Sprintf("unreadable: %v", err)})
			continue
		}
		recs, warns := ParseAddendum(entry.Name(), data)
		records = append(records, recs...)
		warnings = append(warnings, warns...)
	}
	return records, warnings, nil
}

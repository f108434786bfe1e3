package export

import (
	"fmt"
	"strings"

	"github.com/tovenaar/spirit-tracker/internal/battlelog"
	"github.com/tovenaar/spirit-tracker/internal/spirit"
	"github.com/tovenaar/spirit-tracker/internal/stats"
)

// StatRow is a single stat value for a single slot, flattened so one
// export carries every stat and every player.
type StatRow struct {
	StatID  string  `csv:"stat_id" json:"stat_id"`
	Stat    string  `csv:"stat" json:"stat"`
	Player  string  `csv:"player" json:"player"`
	Value   float64 `csv:"value" json:"value"`
	Display string  `csv:"display" json:"display"`
}

// StatRows flattens tally results into export rows, one per slot in
// result order.
func StatRows(results []*stats.Result) []StatRow {
	var rows []StatRow
	for _, res := range results {
		for _, slot := range res.Slots {
			rows = append(rows, StatRow{
				StatID:  res.ID,
				Stat:    res.Title,
				Player:  slot.PlayerName,
				Value:   slot.Value,
				Display: slot.Display,
			})
		}
	}
	return rows
}

// EntryRow is one battle log entry flattened for export. Losses holds
// a per-seat breakdown; shared entries report the shared tally there
// instead.
type EntryRow struct {
	Key         string `csv:"key" json:"key"`
	Name        string `csv:"name" json:"name"`
	Kind        string `csv:"kind" json:"kind"`
	Shared      bool   `csv:"shared" json:"shared"`
	Winner      string `csv:"winner" json:"winner,omitempty"`
	TotalLosses int    `csv:"total_losses" json:"total_losses"`
	Losses      string `csv:"losses" json:"losses"`
}

// EntryRows flattens the battle log into export rows in key order.
func EntryRows(log *battlelog.Log) []EntryRow {
	var rows []EntryRow
	log.Each(func(key string, e *battlelog.Entry) {
		row := EntryRow{
			Key:         key,
			Name:        e.DisplayName,
			Kind:        e.Kind.String(),
			Shared:      e.IsShared,
			TotalLosses: e.TotalLosses(),
			Losses:      lossBreakdown(log, e),
		}
		if !e.Winner.IsShared() {
			row.Winner = log.PlayerName(e.Winner)
		}
		rows = append(rows, row)
	})
	return rows
}

func lossBreakdown(log *battlelog.Log, e *battlelog.Entry) string {
	if e.IsShared {
		return fmt.Sprintf("%s=%d", log.PlayerName(battlelog.Shared), e.SharedTally.Losses)
	}
	parts := make([]string, 0, log.PlayerCount())
	for seat := 0; seat < log.PlayerCount(); seat++ {
		p := battlelog.Seat(seat)
		parts = append(parts, fmt.Sprintf("%s=%d", log.PlayerName(p), e.Losses(p)))
	}
	return strings.Join(parts, "; ")
}

// RecordRow is one catalog record flattened for export. Pointer
// fields stay nil when the source material never stated them, which
// renders as an empty CSV cell or an omitted JSON key.
type RecordRow struct {
	Name           string  `csv:"name" json:"name"`
	Index          *int    `csv:"index" json:"index,omitempty"`
	Series         *string `csv:"series" json:"series,omitempty"`
	Ability        *string `csv:"ability" json:"ability,omitempty"`
	Affinity       string  `csv:"affinity" json:"affinity,omitempty"`
	Usage          string  `csv:"usage" json:"usage,omitempty"`
	Rank           *int    `csv:"rank" json:"rank,omitempty"`
	Slots          *int    `csv:"slots" json:"slots,omitempty"`
	Power          *int    `csv:"power" json:"power,omitempty"`
	BoardBattle    *bool   `csv:"board_battle" json:"board_battle,omitempty"`
	Campaign       *bool   `csv:"campaign" json:"campaign,omitempty"`
	CampaignReward *bool   `csv:"campaign_reward" json:"campaign_reward,omitempty"`
}

// RecordRows flattens the catalog into export rows in key order.
func RecordRows(catalog *spirit.Catalog) []RecordRow {
	var rows []RecordRow
	catalog.Each(func(key string, rec *spirit.Record) {
		row := RecordRow{
			Name:           rec.DisplayName,
			Index:          rec.CollectionIndex,
			Series:         rec.Series,
			Ability:        rec.Ability,
			Rank:           rec.ClassRank,
			Slots:          rec.SlotCount,
			Power:          rec.BattlePower,
			BoardBattle:    rec.HasBoardBattle,
			Campaign:       rec.IsInCampaign,
			CampaignReward: rec.IsCampaignReward,
		}
		if row.Name == "" {
			row.Name = key
		}
		if rec.Affinity != nil {
			row.Affinity = rec.Affinity.String()
		}
		if rec.UsageType != nil {
			row.Usage = rec.UsageType.String()
		}
		rows = append(rows, row)
	})
	return rows
}

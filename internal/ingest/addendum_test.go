package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tovenaar/spirit-tracker/internal/spirit"
)

func TestParseAddendum(t *testing.T) {
	data := []byte(`
[[spirit]]
name = "Baby Mario"
series = "Yoshi"
ability = "Weight ↓"
power = 2500
affinity = "Grab"
slots = 1

[[spirit]]
name = "Pokémon Trainer"
display = "Pokémon Trainer"
usage = "Master"
campaign = true
reward = false
`)
	records, warnings := ParseAddendum("fixes.toml", data)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	first := records[0]
	if first.Key != "baby mario" {
		t.Errorf("Key = %q, want baby mario", first.Key)
	}
	rec := first.Record
	if rec.Series == nil || *rec.Series != "Yoshi" {
		t.Errorf("Series = %v, want Yoshi", rec.Series)
	}
	if rec.Ability == nil || *rec.Ability != "Weight ↓" {
		t.Errorf("Ability = %v", rec.Ability)
	}
	if rec.BattlePower == nil || *rec.BattlePower != 2500 {
		t.Errorf("BattlePower = %v, want 2500", rec.BattlePower)
	}
	if rec.Affinity == nil || *rec.Affinity != spirit.AffinityGrab {
		t.Errorf("Affinity = %v, want Grab", rec.Affinity)
	}
	if rec.SlotCount == nil || *rec.SlotCount != 1 {
		t.Errorf("SlotCount = %v, want 1", rec.SlotCount)
	}
	if rec.CollectionIndex != nil || rec.ClassRank != nil {
		t.Error("unset fields came back set")
	}

	second := records[1]
	if second.Key != "pokemon trainer" {
		t.Errorf("Key = %q, want pokemon trainer", second.Key)
	}
	if second.Record.UsageType == nil || *second.Record.UsageType != spirit.UsageMaster {
		t.Errorf("UsageType = %v, want Master", second.Record.UsageType)
	}
	if second.Record.IsInCampaign == nil || !*second.Record.IsInCampaign {
		t.Errorf("IsInCampaign = %v, want true", second.Record.IsInCampaign)
	}
	if second.Record.IsCampaignReward == nil || *second.Record.IsCampaignReward {
		t.Errorf("IsCampaignReward = %v, want false", second.Record.IsCampaignReward)
	}
}

func TestParseAddendumBadFile(t *testing.T) {
	records, warnings := ParseAddendum("broken.toml", []byte("this is [not toml"))
	if len(records) != 0 {
		t.Errorf("records = %v, want none", records)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want one", warnings)
	}
}

func TestParseAddendumPartialProblems(t *testing.T) {
	data := []byte(`
[[spirit]]
name = ""
series = "Lost"

[[spirit]]
name = "Kirby"
affinity = "Sword"
power = 6500
`)
	records, warnings := ParseAddendum("fixes.toml", data)
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want nameless block and bad affinity", warnings)
	}
	// The bad affinity costs only that field.
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	rec := records[0].Record
	if rec.Affinity != nil {
		t.Errorf("Affinity = %v, want unset", *rec.Affinity)
	}
	if rec.BattlePower == nil || *rec.BattlePower != 6500 {
		t.Errorf("BattlePower = %v, want 6500", rec.BattlePower)
	}
}

func TestLoadAddenda(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	writeFile("b_second.toml", "[[spirit]]\nname = \"Luigi\"\npower = 2\n")
	writeFile("a_first.toml", "[[spirit]]\nname = \"Luigi\"\npower = 1\n")
	writeFile("notes.txt", "not an override")

	records, warnings, err := LoadAddenda(dir)
	if err != nil {
		t.Fatalf("LoadAddenda: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	// File-name order decides merge order, so the later file wins
	// once the records are applied in sequence.
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if *records[0].Record.BattlePower != 1 || *records[1].Record.BattlePower != 2 {
		t.Errorf("records out of file-name order: %d, %d",
			*records[0].Record.BattlePower, *records[1].Record.BattlePower)
	}
}

func TestLoadAddendaMissingDir(t *testing.T) {
	records, warnings, err := LoadAddenda(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing directory is not an error, got %v", err)
	}
	if len(records) != 0 || len(warnings) != 0 {
		t.Errorf("records = %v, warnings = %v, want none", records, warnings)
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/tovenaar/spirit-tracker/internal/spirit"
)

// displayCatalogSummary renders coverage counts and the first slice of
// the merged catalog.
func displayCatalogSummary(catalog *spirit.Catalog) {
	if catalog.Len() == 0 {
		fmt.Println("The catalog is empty. Check the configured wiki sources.")
		return
	}

	fmt.Println()
	fmt.Println("Catalog")
	fmt.Println("=======")
	fmt.Println()

	var withSeries, withAffinity, withPower, withAbility int
	catalog.Each(func(key string, rec *spirit.Record) {
		if rec.Series != nil {
			withSeries++
		}
		if rec.Affinity != nil {
			withAffinity++
		}
		if rec.BattlePower != nil {
			withPower++
		}
		if rec.Ability != nil {
			withAbility++
		}
	})

	fmt.Println("Coverage:")
	fmt.Printf("  Records:       %d\n", catalog.Len())
	fmt.Printf("  With series:   %d\n", withSeries)
	fmt.Printf("  With affinity: %d\n", withAffinity)
	fmt.Printf("  With power:    %d\n", withPower)
	fmt.Printf("  With ability:  %d\n", withAbility)
	fmt.Println()

	// Name listing, capped the way a terminal can take it.
	maxDisplay := 50
	keys := catalog.Keys()
	fmt.Printf("Records (showing first %d):\n", maxDisplay)
	for i, key := range keys {
		if i >= maxDisplay {
			fmt.Printf("  ... and %d more records\n", len(keys)-maxDisplay)
			break
		}
		rec := catalog.Lookup(key)
		name := rec.DisplayName
		if name == "" {
			name = key
		}
		fmt.Printf("  %s\n", name)
	}
	fmt.Println()
	fmt.Println("Use 'spirit-tracker catalog <name>' for one record.")
	fmt.Println()
}

// displayRecord renders every field of one catalog record, with "-"
// standing in for unknown values.
func displayRecord(rec *spirit.Record) {
	name := rec.DisplayName
	if name == "" {
		name = "(unnamed)"
	}

	fmt.Println()
	fmt.Println(name)
	fmt.Println(strings.Repeat("=", len(name)))
	fmt.Println()

	fmt.Printf("  Collection #:    %s\n", formatIntField(rec.CollectionIndex))
	fmt.Printf("  Series:          %s\n", formatStringField(rec.Series))
	fmt.Printf("  Ability:         %s\n", formatStringField(rec.Ability))
	fmt.Printf("  Affinity:        %s\n", formatAffinityField(rec.Affinity))
	fmt.Printf("  Usage:           %s\n", formatUsageField(rec.UsageType))
	fmt.Printf("  Class rank:      %s\n", formatIntField(rec.ClassRank))
	fmt.Printf("  Slots:           %s\n", formatIntField(rec.SlotCount))
	fmt.Printf("  Battle power:    %s\n", formatIntField(rec.BattlePower))
	fmt.Printf("  Board battle:    %s\n", formatBoolField(rec.HasBoardBattle))
	fmt.Printf("  In campaign:     %s\n", formatBoolField(rec.IsInCampaign))
	fmt.Printf("  Campaign reward: %s\n", formatBoolField(rec.IsCampaignReward))
	if rec.HasCampaignBattle() {
		fmt.Println()
		fmt.Println("  Fought in the campaign.")
	}
	fmt.Println()
}

func formatStringField(p *string) string {
	if p == nil {
		return "-"
	}
	return *p
}

func formatIntField(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}

func formatBoolField(p *bool) string {
	if p == nil {
		return "-"
	}
	if *p {
		return "yes"
	}
	return "no"
}

func formatAffinityField(p *spirit.Affinity) string {
	if p == nil {
		return "-"
	}
	return p.String()
}

func formatUsageField(p *spirit.UsageType) string {
	if p == nil {
		return "-"
	}
	return p.String()
}

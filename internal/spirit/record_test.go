package spirit

import "testing"

func TestNormalizeAbility(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", AbilityNone},
		{"whitespace only", "   ", AbilityNone},
		{"none literal", "None", AbilityNone},
		{"no skill", "No Skill", AbilityNone},
		{"no ability", "No Ability", AbilityNone},
		{"mixed case none", "nOnE", AbilityNone},
		{"enhanceable", "Can Be Enhanced", AbilityEnhanced},
		{"enhanceable with detail", "Fire Attack ↑ (Can Be Enhanced at Lv. 99)", AbilityEnhanced},
		{"real ability kept", "Weapon Attack ↑", "Weapon Attack ↑"},
		{"real ability trimmed", "  Jump ↑  ", "Jump ↑"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAbility(tt.input); got != tt.want {
				t.Errorf("NormalizeAbility(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeAbilityIdempotent(t *testing.T) {
	inputs := []string{"", "No Skill", "Can Be Enhanced", "Weapon Attack ↑", "None", "Enhanced"}
	for _, in := range inputs {
		once := NormalizeAbility(in)
		twice := NormalizeAbility(once)
		if once != twice {
			t.Errorf("NormalizeAbility not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestRecordNormalize(t *testing.T) {
	rec := &Record{DisplayName: "Mario", Ability: stringPtr("no skill")}
	rec.Normalize()
	if rec.Ability == nil || *rec.Ability != AbilityNone {
		t.Fatalf("Ability = %v, want %q", rec.Ability, AbilityNone)
	}

	rec.Normalize()
	if *rec.Ability != AbilityNone {
		t.Errorf("second Normalize changed ability to %q", *rec.Ability)
	}

	unset := &Record{DisplayName: "Luigi"}
	unset.Normalize()
	if unset.Ability != nil {
		t.Errorf("Normalize set ability on a record without one: %q", *unset.Ability)
	}
}

func TestRecordMerge(t *testing.T) {
	attack := AffinityAttack
	shield := AffinityShield

	tests := []struct {
		name        string
		dst         *Record
		src         *Record
		wantChanged bool
		check       func(t *testing.T, dst *Record)
	}{
		{
			name:        "unset field filled",
			dst:         &Record{DisplayName: "Mario"},
			src:         &Record{Series: stringPtr("Super Mario")},
			wantChanged: true,
			check: func(t *testing.T, dst *Record) {
				if dst.Series == nil || *dst.Series != "Super Mario" {
					t.Errorf("Series = %v, want Super Mario", dst.Series)
				}
			},
		},
		{
			name:        "set field survives unset source",
			dst:         &Record{DisplayName: "Mario", Series: stringPtr("Super Mario"), BattlePower: intPtr(9500)},
			src:         &Record{},
			wantChanged: false,
			check: func(t *testing.T, dst *Record) {
				if dst.Series == nil || *dst.Series != "Super Mario" {
					t.Errorf("Series = %v, want Super Mario", dst.Series)
				}
				if dst.BattlePower == nil || *dst.BattlePower != 9500 {
					t.Errorf("BattlePower = %v, want 9500", dst.BattlePower)
				}
			},
		},
		{
			name:        "set field in source wins",
			dst:         &Record{DisplayName: "Mario", Affinity: &attack},
			src:         &Record{Affinity: &shield},
			wantChanged: true,
			check: func(t *testing.T, dst *Record) {
				if dst.Affinity == nil || *dst.Affinity != AffinityShield {
					t.Errorf("Affinity = %v, want Shield", dst.Affinity)
				}
			},
		},
		{
			name:        "equal value is not a change",
			dst:         &Record{DisplayName: "Mario", SlotCount: intPtr(2)},
			src:         &Record{SlotCount: intPtr(2)},
			wantChanged: false,
			check:       func(t *testing.T, dst *Record) {},
		},
		{
			name:        "blank display name never erases",
			dst:         &Record{DisplayName: "Mario"},
			src:         &Record{Series: stringPtr("Super Mario")},
			wantChanged: true,
			check: func(t *testing.T, dst *Record) {
				if dst.DisplayName != "Mario" {
					t.Errorf("DisplayName = %q, want Mario", dst.DisplayName)
				}
			},
		},
		{
			name:        "false is a set value",
			dst:         &Record{DisplayName: "Mario", IsInCampaign: boolPtr(true)},
			src:         &Record{IsInCampaign: boolPtr(false)},
			wantChanged: true,
			check: func(t *testing.T, dst *Record) {
				if dst.IsInCampaign == nil || *dst.IsInCampaign {
					t.Errorf("IsInCampaign = %v, want false", dst.IsInCampaign)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dst.Merge(tt.src); got != tt.wantChanged {
				t.Errorf("Merge changed = %v, want %v", got, tt.wantChanged)
			}
			tt.check(t, tt.dst)
		})
	}
}

func TestRecordMergeCopiesValues(t *testing.T) {
	power := 9500
	src := &Record{BattlePower: &power}
	dst := &Record{DisplayName: "Mario"}
	dst.Merge(src)

	power = 1
	if *dst.BattlePower != 9500 {
		t.Errorf("merged field aliases the source: got %d", *dst.BattlePower)
	}
}

func TestHasCampaignBattle(t *testing.T) {
	tests := []struct {
		name string
		rec  *Record
		want bool
	}{
		{"nil record", nil, false},
		{"all unset", &Record{}, false},
		{"in campaign", &Record{IsInCampaign: boolPtr(true)}, true},
		{"in campaign but reward", &Record{IsInCampaign: boolPtr(true), IsCampaignReward: boolPtr(true)}, false},
		{"in campaign reward false", &Record{IsInCampaign: boolPtr(true), IsCampaignReward: boolPtr(false)}, true},
		{"board only", &Record{IsInCampaign: boolPtr(false), HasBoardBattle: boolPtr(true)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.HasCampaignBattle(); got != tt.want {
				t.Errorf("HasCampaignBattle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseAffinity(t *testing.T) {
	tests := []struct {
		input  string
		want   Affinity
		wantOK bool
	}{
		{"Neutral", AffinityNeutral, true},
		{"Attack", AffinityAttack, true},
		{"Shield", AffinityShield, true},
		{"Grab", AffinityGrab, true},
		{"None", AffinityNone, true},
		{"attack", AffinityNone, false},
		{"Sword", AffinityNone, false},
		{"", AffinityNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseAffinity(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseAffinity(%q) = %v, %v, want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseUsageType(t *testing.T) {
	tests := []struct {
		input  string
		want   UsageType
		wantOK bool
	}{
		{"Primary", UsagePrimary, true},
		{"Support", UsageSupport, true},
		{"Master", UsageMaster, true},
		{"Fighter", UsageFighter, true},
		{"None", UsageNone, true},
		{"primary", UsageNone, false},
		{"Legend", UsageNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseUsageType(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseUsageType(%q) = %v, %v, want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func stringPtr(s string) *string { return &s }
func intPtr(n int) *int          { return &n }
func boolPtr(b bool) *bool       { return &b }

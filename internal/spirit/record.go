// Package spirit defines the normalized entity records the tracker
// works with and the catalog that holds them.
package spirit

import "strings"

// Affinity is the battle affinity printed on an entity's battle table.
type Affinity int

const (
	AffinityNone Affinity = iota
	AffinityNeutral
	AffinityAttack
	AffinityShield
	AffinityGrab
)

// affinityNames doubles as the exact-match table for ParseAffinity.
var affinityNames = map[Affinity]string{
	AffinityNone:    "None",
	AffinityNeutral: "Neutral",
	AffinityAttack:  "Attack",
	AffinityShield:  "Shield",
	AffinityGrab:    "Grab",
}

func (a Affinity) String() string {
	if s, ok := affinityNames[a]; ok {
		return s
	}
	return "Unknown"
}

// ParseAffinity maps a wiki affinity tag to its value. The match is
// exact: anything else reports false.
func ParseAffinity(s string) (Affinity, bool) {
	for a, name := range affinityNames {
		if s == name {
			return a, true
		}
	}
	return AffinityNone, false
}

// UsageType is how an entity is used once acquired.
type UsageType int

const (
	UsageNone UsageType = iota
	UsageFighter
	UsagePrimary
	UsageSupport
	UsageMaster
)

var usageNames = map[UsageType]string{
	UsageNone:    "None",
	UsageFighter: "Fighter",
	UsagePrimary: "Primary",
	UsageSupport: "Support",
	UsageMaster:  "Master",
}

func (u UsageType) String() string {
	if s, ok := usageNames[u]; ok {
		return s
	}
	return "Unknown"
}

// ParseUsageType maps a wiki usage tag to its value via exact match.
func ParseUsageType(s string) (UsageType, bool) {
	for u, name := range usageNames {
		if s == name {
			return u, true
		}
	}
	return UsageNone, false
}

// Canonical ability values produced by NormalizeAbility.
const (
	AbilityNone     = "None"
	AbilityEnhanced = "Enhanced"
)

// Record holds everything known about one game entity. Every field
// other than the display name is optional: nil means unknown, and a
// merge never writes over a known value with an unknown one.
type Record struct {
	DisplayName      string
	CollectionIndex  *int
	Series           *string
	Ability          *string
	Affinity         *Affinity
	UsageType        *UsageType
	ClassRank        *int
	SlotCount        *int
	BattlePower      *int
	HasBoardBattle   *bool
	IsInCampaign     *bool
	IsCampaignReward *bool
}

// HasCampaignBattle reports whether the entity is actually fought in the
// campaign: present there and not handed out as a reward. Reward-only
// entities stay in acquisition bookkeeping but are not battles.
func (r *Record) HasCampaignBattle() bool {
	if r == nil {
		return false
	}
	return boolValue(r.IsInCampaign) && !boolValue(r.IsCampaignReward)
}

// NormalizeAbility collapses the wiki's spelling variants: the handful
// of "no ability" spellings become AbilityNone and the "can be
// enhanced" phrasings become AbilityEnhanced. Normalizing an already
// canonical value returns it unchanged.
func NormalizeAbility(s string) string {
	t := strings.TrimSpace(s)
	switch strings.ToLower(t) {
	case "", "none", "no skill", "no ability":
		return AbilityNone
	}
	if strings.Contains(strings.ToLower(t), "can be enhanced") {
		return AbilityEnhanced
	}
	return t
}

// Normalize applies record-finalization cleanup. It runs after every
// source has been merged so addenda are normalized the same way the
// scanned values are. Idempotent.
func (r *Record) Normalize() {
	if r.Ability != nil {
		a := NormalizeAbility(*r.Ability)
		r.Ability = &a
	}
}

// Merge copies every set field of src into r and leaves the rest of r
// alone: a set field in src wins, an unset one never erases. It reports
// whether r changed.
func (r *Record) Merge(src *Record) bool {
	if src == nil {
		return false
	}
	changed := false
	if src.DisplayName != "" && src.DisplayName != r.DisplayName {
		r.DisplayName = src.DisplayName
		changed = true
	}
	changed = mergeField(&r.CollectionIndex, src.CollectionIndex) || changed
	changed = mergeField(&r.Series, src.Series) || changed
	changed = mergeField(&r.Ability, src.Ability) || changed
	changed = mergeField(&r.Affinity, src.Affinity) || changed
	changed = mergeField(&r.UsageType, src.UsageType) || changed
	changed = mergeField(&r.ClassRank, src.ClassRank) || changed
	changed = mergeField(&r.SlotCount, src.SlotCount) || changed
	changed = mergeField(&r.BattlePower, src.BattlePower) || changed
	changed = mergeField(&r.HasBoardBattle, src.HasBoardBattle) || changed
	changed = mergeField(&r.IsInCampaign, src.IsInCampaign) || changed
	changed = mergeField(&r.IsCampaignReward, src.IsCampaignReward) || changed
	return changed
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{DisplayName: r.DisplayName}
	out.Merge(r)
	return out
}

// mergeField overwrites *dst with a copy of src when src is set and
// differs. Reports whether *dst changed.
func mergeField[T comparable](dst **T, src *T) bool {
	if src == nil {
		return false
	}
	if *dst != nil && **dst == *src {
		return false
	}
	v := *src
	*dst = &v
	return true
}

func boolValue(p *bool) bool {
	return p != nil && *p
}

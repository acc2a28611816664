// Package weapons defines attack profiles and the YAML catalog they are
// loaded from. A profile describes how an attack is rolled and which
// defenses can answer it; it carries no per-fight state.
package weapons

// AttackType categorizes a profile's delivery. Ranged attacks cannot be
// parried or riposted at the engine level regardless of profile flags.
const (
	TypeMelee  = "melee"
	TypeRanged = "ranged"
)

// Profile is one attack mode: stat/skill selections, damage bonuses, and
// the defenses it permits.
type Profile struct {
	// ID is the catalog key; empty for ad-hoc profiles.
	ID string
	// Name is the display name ("rusty saber").
	Name string
	// AttackStat and AttackSkill feed the to-hit check.
	AttackStat  string
	AttackSkill string
	// DamageStat feeds the damage roll's dice pool.
	DamageStat string
	// WeaponDamage adds bonus dice to the damage roll.
	WeaponDamage int
	// FlatDamage is added to the damage total before randomization.
	FlatDamage int
	// AttackType is TypeMelee or TypeRanged.
	AttackType string
	// CanBeParried/Blocked/Dodged gate which defenses answer this attack.
	CanBeParried bool
	CanBeBlocked bool
	CanBeDodged  bool
	// CanParry and CanRiposte describe what the wielder can do with it.
	CanParry   bool
	CanRiposte bool
	// DifficultyMod shifts the wielder's attack difficulty; negative is
	// a bonus (a well-made blade), positive a hindrance.
	DifficultyMod int
}

// Unarmed returns the bare-hands fallback profile: everything can stop
// it, it can't parry steel, but it can riposte.
func Unarmed() Profile {
	return Profile{
		Name:         "bare hands",
		AttackStat:   "dexterity",
		AttackSkill:  "brawl",
		DamageStat:   "strength",
		AttackType:   TypeMelee,
		CanBeParried: true,
		CanBeBlocked: true,
		CanBeDodged:  true,
		CanParry:     false,
		CanRiposte:   true,
	}
}

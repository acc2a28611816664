package weapons

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlCatalogFile is the top-level YAML structure for weapon catalogs.
type yamlCatalogFile struct {
	Weapons []yamlWeapon `yaml:"weapons"`
}

// yamlWeapon is the YAML representation of a Profile. Boolean gates use
// pointers so an omitted field defaults to permissive (true) rather than
// false.
type yamlWeapon struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	AttackStat    string `yaml:"attack_stat"`
	AttackSkill   string `yaml:"attack_skill"`
	DamageStat    string `yaml:"damage_stat"`
	WeaponDamage  int    `yaml:"weapon_damage"`
	FlatDamage    int    `yaml:"flat_damage"`
	AttackType    string `yaml:"attack_type"`
	CanBeParried  *bool  `yaml:"can_be_parried"`
	CanBeBlocked  *bool  `yaml:"can_be_blocked"`
	CanBeDodged   *bool  `yaml:"can_be_dodged"`
	CanParry      *bool  `yaml:"can_parry"`
	CanRiposte    *bool  `yaml:"can_riposte"`
	DifficultyMod int    `yaml:"difficulty_mod"`
}

// Catalog maps profile IDs to Profiles.
type Catalog map[string]Profile

// Get returns the profile for id, or the unarmed fallback when id is
// empty or unknown.
func (c Catalog) Get(id string) Profile {
	if p, ok := c[id]; ok {
		return p
	}
	return Unarmed()
}

// LoadCatalogFromFile reads and validates a weapon catalog YAML file.
func LoadCatalogFromFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weapon catalog %s: %w", path, err)
	}
	cat, err := LoadCatalogFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("weapon catalog %s: %w", path, err)
	}
	return cat, nil
}

// LoadCatalogFromBytes parses and validates a catalog from YAML bytes.
//
// Postcondition: every returned Profile has non-empty ID, name, stat and
// skill selections, and a known attack type.
func LoadCatalogFromBytes(data []byte) (Catalog, error) {
	var file yamlCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	cat := make(Catalog, len(file.Weapons))
	for i, w := range file.Weapons {
		if w.ID == "" {
			return nil, fmt.Errorf("weapon %d: missing id", i)
		}
		if _, dup := cat[w.ID]; dup {
			return nil, fmt.Errorf("weapon %q: duplicate id", w.ID)
		}
		p, err := w.toProfile()
		if err != nil {
			return nil, fmt.Errorf("weapon %q: %w", w.ID, err)
		}
		cat[w.ID] = p
	}
	return cat, nil
}

// toProfile applies defaults and validates a single YAML entry.
func (w yamlWeapon) toProfile() (Profile, error) {
	p := Unarmed()
	p.ID = w.ID
	p.Name = w.Name
	if p.Name == "" {
		p.Name = w.ID
	}
	if w.AttackStat != "" {
		p.AttackStat = w.AttackStat
	}
	if w.AttackSkill != "" {
		p.AttackSkill = w.AttackSkill
	}
	if w.DamageStat != "" {
		p.DamageStat = w.DamageStat
	}
	p.WeaponDamage = w.WeaponDamage
	p.FlatDamage = w.FlatDamage
	p.DifficultyMod = w.DifficultyMod

	switch w.AttackType {
	case "":
		// keep melee default
	case TypeMelee, TypeRanged:
		p.AttackType = w.AttackType
	default:
		return Profile{}, fmt.Errorf("unknown attack_type %q", w.AttackType)
	}

	// Armed profiles can parry by default; unarmed cannot.
	p.CanParry = true
	if w.CanBeParried != nil {
		p.CanBeParried = *w.CanBeParried
	}
	if w.CanBeBlocked != nil {
		p.CanBeBlocked = *w.CanBeBlocked
	}
	if w.CanBeDodged != nil {
		p.CanBeDodged = *w.CanBeDodged
	}
	if w.CanParry != nil {
		p.CanParry = *w.CanParry
	}
	if w.CanRiposte != nil {
		p.CanRiposte = *w.CanRiposte
	}

	// Ranged weapons cannot parry incoming blows nor riposte.
	if p.AttackType == TypeRanged {
		p.CanParry = false
		p.CanRiposte = false
	}
	if w.WeaponDamage < 0 {
		return Profile{}, fmt.Errorf("weapon_damage must be >= 0, got %d", w.WeaponDamage)
	}
	return p, nil
}

// Package catalog holds the static class tables the tracker reads names,
// icons and summon options from.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
)

//go:embed classes.yaml
var classesYAML []byte

// CharacterClass identifies a playable character class
type CharacterClass int

// MonsterClass identifies a monster type
type MonsterClass int

// SummonClass identifies a summoned figure type
type SummonClass int

// Info is the display data for one class
type Info struct {
	Key  string
	Name string
	// Icon is relative to the configured icon base, empty when the class has none
	Icon string
}

// IconPath joins an icon onto base. Returns "" when there is no icon.
func IconPath(base, icon string) string {
	if icon == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/" + icon
}

// Lookup is the read-only view of the class tables the tracker engine depends on
type Lookup interface {
	Character(class CharacterClass) (Info, bool)
	Monster(class MonsterClass) (Info, bool)
	Summon(class SummonClass) (Info, bool)

	// AutoSummons lists summons created together with a character of this class
	AutoSummons(class CharacterClass) []SummonClass

	// Summonables lists the class summons followed by the item summons
	Summonables(class CharacterClass) []SummonClass
}

type characterEntry struct {
	ID          int      `yaml:"id"`
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Icon        string   `yaml:"icon"`
	Summons     []string `yaml:"summons"`
	AutoSummons []string `yaml:"autoSummons"`
}

type classEntry struct {
	ID   int    `yaml:"id"`
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type document struct {
	Characters  []characterEntry `yaml:"characters"`
	Monsters    []classEntry     `yaml:"monsters"`
	Summons     []classEntry     `yaml:"summons"`
	ItemSummons []string         `yaml:"itemSummons"`
}

// Catalog is the loaded, cross-referenced set of class tables
type Catalog struct {
	characters  map[CharacterClass]Info
	monsters    map[MonsterClass]Info
	summons     map[SummonClass]Info
	classSummon map[CharacterClass][]SummonClass
	autoSummon  map[CharacterClass][]SummonClass
	itemSummons []SummonClass
}

var _ Lookup = (*Catalog)(nil)

var loadDefault = sync.OnceValue(func() *Catalog {
	c, err := Load(classesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded class tables are invalid: %v", err))
	}
	return c
})

// Default returns the catalog built from the embedded class tables
func Default() *Catalog {
	return loadDefault()
}

// Load parses YAML class tables. Summon references are resolved by key and
// every id must be positive and unique within its table.
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse class tables")
	}

	c := &Catalog{
		characters:  make(map[CharacterClass]Info, len(doc.Characters)),
		monsters:    make(map[MonsterClass]Info, len(doc.Monsters)),
		summons:     make(map[SummonClass]Info, len(doc.Summons)),
		classSummon: make(map[CharacterClass][]SummonClass),
		autoSummon:  make(map[CharacterClass][]SummonClass),
	}

	summonKeys := make(map[string]SummonClass, len(doc.Summons))
	for _, e := range doc.Summons {
		if err := checkEntry("summon", e.ID, e.Key, e.Name); err != nil {
			return nil, err
		}
		id := SummonClass(e.ID)
		if _, dup := c.summons[id]; dup {
			return nil, errors.InvalidArgumentf("duplicate summon id %d", e.ID)
		}
		c.summons[id] = Info{Key: e.Key, Name: e.Name, Icon: e.Icon}
		summonKeys[e.Key] = id
	}

	resolve := func(owner string, keys []string) ([]SummonClass, error) {
		out := make([]SummonClass, 0, len(keys))
		for _, k := range keys {
			id, ok := summonKeys[k]
			if !ok {
				return nil, errors.InvalidArgumentf("%s references unknown summon %q", owner, k)
			}
			out = append(out, id)
		}
		return out, nil
	}

	for _, e := range doc.Characters {
		if err := checkEntry("character", e.ID, e.Key, e.Name); err != nil {
			return nil, err
		}
		id := CharacterClass(e.ID)
		if _, dup := c.characters[id]; dup {
			return nil, errors.InvalidArgumentf("duplicate character id %d", e.ID)
		}
		c.characters[id] = Info{Key: e.Key, Name: e.Name, Icon: e.Icon}

		summons, err := resolve(e.Key, e.Summons)
		if err != nil {
			return nil, err
		}
		auto, err := resolve(e.Key, e.AutoSummons)
		if err != nil {
			return nil, err
		}
		if len(summons) > 0 {
			c.classSummon[id] = summons
		}
		if len(auto) > 0 {
			c.autoSummon[id] = auto
		}
	}

	for _, e := range doc.Monsters {
		if err := checkEntry("monster", e.ID, e.Key, e.Name); err != nil {
			return nil, err
		}
		id := MonsterClass(e.ID)
		if _, dup := c.monsters[id]; dup {
			return nil, errors.InvalidArgumentf("duplicate monster id %d", e.ID)
		}
		c.monsters[id] = Info{Key: e.Key, Name: e.Name, Icon: e.Icon}
	}

	items, err := resolve("itemSummons", doc.ItemSummons)
	if err != nil {
		return nil, err
	}
	c.itemSummons = items

	return c, nil
}

func checkEntry(kind string, id int, key, name string) error {
	vb := errors.NewValidationBuilder()
	if id <= 0 {
		vb.Fieldf(kind+".id", "must be positive, got %d", id)
	}
	errors.ValidateRequired(kind+".key", key, vb)
	errors.ValidateRequired(kind+".name", name, vb)
	return vb.Build()
}

// Character returns the display data for a character class
func (c *Catalog) Character(class CharacterClass) (Info, bool) {
	info, ok := c.characters[class]
	return info, ok
}

// Monster returns the display data for a monster class
func (c *Catalog) Monster(class MonsterClass) (Info, bool) {
	info, ok := c.monsters[class]
	return info, ok
}

// Summon returns the display data for a summon class
func (c *Catalog) Summon(class SummonClass) (Info, bool) {
	info, ok := c.summons[class]
	return info, ok
}

// AutoSummons returns the summons that always accompany a character class
func (c *Catalog) AutoSummons(class CharacterClass) []SummonClass {
	return append([]SummonClass(nil), c.autoSummon[class]...)
}

// Summonables returns the class summons followed by the item summons
func (c *Catalog) Summonables(class CharacterClass) []SummonClass {
	out := make([]SummonClass, 0, len(c.classSummon[class])+len(c.itemSummons))
	out = append(out, c.classSummon[class]...)
	return append(out, c.itemSummons...)
}

// CharacterClasses returns every character class in id order
func (c *Catalog) CharacterClasses() []CharacterClass {
	return sortedKeys(c.characters)
}

// MonsterClasses returns every monster class in id order
func (c *Catalog) MonsterClasses() []MonsterClass {
	return sortedKeys(c.monsters)
}

// SummonClasses returns every summon class in id order
func (c *Catalog) SummonClasses() []SummonClass {
	return sortedKeys(c.summons)
}

// ParseCharacterClass accepts a numeric id, a key or a display name
func (c *Catalog) ParseCharacterClass(value string) (CharacterClass, bool) {
	return parse(c.characters, value)
}

// ParseMonsterClass accepts a numeric id, a key or a display name
func (c *Catalog) ParseMonsterClass(value string) (MonsterClass, bool) {
	return parse(c.monsters, value)
}

// ParseSummonClass accepts a numeric id, a key or a display name
func (c *Catalog) ParseSummonClass(value string) (SummonClass, bool) {
	return parse(c.summons, value)
}

func sortedKeys[K ~int](m map[K]Info) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func parse[K ~int](m map[K]Info, value string) (K, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(value); err == nil {
		if _, ok := m[K(n)]; ok {
			return K(n), true
		}
		return 0, false
	}
	for id, info := range m {
		if strings.EqualFold(info.Key, value) || strings.EqualFold(info.Name, value) {
			return id, true
		}
	}
	return 0, false
}

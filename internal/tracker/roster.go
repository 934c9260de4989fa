package tracker

import (
	"reflect"

	"github.com/KirkDiggler/initiative-tracker/internal/catalog"
)

// Figures lists what is already on the board, so callers can offer only
// classes and names that are still free.
type Figures struct {
	Characters map[catalog.CharacterClass]bool
	Monsters   map[catalog.MonsterClass]bool
	// Summons is keyed by the owning character's class
	Summons map[catalog.CharacterClass]map[catalog.SummonClass]bool
	Allies  map[string]bool
}

// ExistingFigures collects the classes and ally names currently tracked
func ExistingFigures(s State) Figures {
	f := Figures{
		Characters: make(map[catalog.CharacterClass]bool),
		Monsters:   make(map[catalog.MonsterClass]bool),
		Summons:    make(map[catalog.CharacterClass]map[catalog.SummonClass]bool),
		Allies:     make(map[string]bool),
	}
	for _, p := range s.participants {
		switch v := p.(type) {
		case *Character:
			f.Characters[v.Class] = true
			if len(v.Summons) == 0 {
				continue
			}
			summons := make(map[catalog.SummonClass]bool, len(v.Summons))
			for _, sm := range v.Summons {
				summons[sm.Class] = true
			}
			f.Summons[v.Class] = summons
		case *Monster:
			f.Monsters[v.Class] = true
		case *Ally:
			f.Allies[v.Name] = true
		case *Summon:
			// summons are never top-level
		}
	}
	return f
}

// HasSummon reports whether the character of class owns a summon of summonClass
func (f Figures) HasSummon(class catalog.CharacterClass, summonClass catalog.SummonClass) bool {
	return f.Summons[class][summonClass]
}

type rosterEntry struct {
	Kind    Kind
	Name    string
	Class   int
	Summons []rosterEntry
}

func rosterOf(s State) ([]rosterEntry, error) {
	ordered, err := s.Ordered()
	if err != nil {
		return nil, err
	}
	out := make([]rosterEntry, 0, len(ordered))
	for _, p := range ordered {
		e := rosterEntry{Kind: p.Kind(), Name: p.Common().Name}
		switch v := p.(type) {
		case *Character:
			e.Class = int(v.Class)
			for _, sm := range v.Summons {
				e.Summons = append(e.Summons, rosterEntry{Kind: KindSummon, Name: sm.Name, Class: int(sm.Class)})
			}
		case *Monster:
			e.Class = int(v.Class)
		case *Summon:
			e.Class = int(v.Class)
		case *Ally:
		}
		out = append(out, e)
	}
	return out, nil
}

// RosterEqual compares who is tracked in which order, including summon
// ownership. Ids and round-scoped values are ignored. Corrupted states are
// never equal.
func RosterEqual(a, b State) bool {
	ra, err := rosterOf(a)
	if err != nil {
		return false
	}
	rb, err := rosterOf(b)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(ra, rb)
}

package tracker

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/initiative-tracker/internal/catalog"
)

// Kind tags the participant variants
type Kind string

const (
	KindCharacter Kind = "character"
	KindMonster   Kind = "monster"
	KindSummon    Kind = "summon"
	KindAlly      Kind = "ally"
)

// Initiative bounds. NoInitiative marks a participant that has not chosen yet.
const (
	NoInitiative      = 0
	MinInitiative     = 1
	MaxInitiative     = 99
	DefaultInitiative = MaxInitiative
)

// Base holds the attributes every participant shares
type Base struct {
	ID           int
	Name         string
	Icon         string
	Initiative   int
	TurnComplete bool

	// Derived from the turn order; recomputed after every order or initiative change
	TiedWithPrevious bool
	TiedWithNext     bool
}

// Common returns a copy of the shared attributes
func (b Base) Common() Base {
	return b
}

// GetID implements core.Entity
func (b Base) GetID() string {
	return strconv.Itoa(b.ID)
}

// HasInitiative reports whether an initiative has been chosen
func (b Base) HasInitiative() bool {
	return b.Initiative != NoInitiative
}

// Participant is one of *Character, *Monster, *Summon or *Ally.
// Values are never modified once they are part of a State.
type Participant interface {
	core.Entity
	Kind() Kind
	Common() Base
	isParticipant()
}

// Character is a player character with the summons it currently controls
type Character struct {
	Base
	Class   catalog.CharacterClass
	Summons []*Summon
}

// Monster is a monster type; its name comes from the class
type Monster struct {
	Base
	Class catalog.MonsterClass
}

// Summon is nested under its owning character and never takes part in the turn order
type Summon struct {
	Base
	CharacterID int
	Class       catalog.SummonClass
}

// Ally is a named non-player figure fighting on the players' side
type Ally struct {
	Base
}

func (*Character) Kind() Kind { return KindCharacter }
func (*Monster) Kind() Kind   { return KindMonster }
func (*Summon) Kind() Kind    { return KindSummon }
func (*Ally) Kind() Kind      { return KindAlly }

func (c *Character) GetType() string { return string(c.Kind()) }
func (m *Monster) GetType() string   { return string(m.Kind()) }
func (s *Summon) GetType() string    { return string(s.Kind()) }
func (a *Ally) GetType() string      { return string(a.Kind()) }

func (*Character) isParticipant() {}
func (*Monster) isParticipant()   {}
func (*Summon) isParticipant()    {}
func (*Ally) isParticipant()      {}

var (
	_ Participant = (*Character)(nil)
	_ Participant = (*Monster)(nil)
	_ Participant = (*Summon)(nil)
	_ Participant = (*Ally)(nil)
)

// FindSummon returns the summon with the given id, if this character controls it
func (c *Character) FindSummon(id int) (*Summon, int, bool) {
	for i, s := range c.Summons {
		if s.ID == id {
			return s, i, true
		}
	}
	return nil, -1, false
}

// withBase copies p, applies fn to the copy's shared attributes and returns it.
// p itself is left untouched.
func withBase(p Participant, fn func(*Base)) Participant {
	switch v := p.(type) {
	case *Character:
		c := *v
		fn(&c.Base)
		return &c
	case *Monster:
		m := *v
		fn(&m.Base)
		return &m
	case *Summon:
		s := *v
		fn(&s.Base)
		return &s
	case *Ally:
		a := *v
		fn(&a.Base)
		return &a
	default:
		panic(fmt.Sprintf("tracker: unknown participant type %T", p))
	}
}

// withSummons returns a copy of c controlling summons
func (c *Character) withSummons(summons []*Summon) *Character {
	n := *c
	n.Summons = summons
	return &n
}

// mapSummons applies fn to every summon, copying the character only when a
// summon actually changed.
func (c *Character) mapSummons(fn func(*Summon) *Summon) *Character {
	var out []*Summon
	for i, s := range c.Summons {
		updated := fn(s)
		if updated == s {
			continue
		}
		if out == nil {
			out = slices.Clone(c.Summons)
		}
		out[i] = updated
	}
	if out == nil {
		return c
	}
	return c.withSummons(out)
}

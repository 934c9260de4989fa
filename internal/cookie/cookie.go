// Package cookie converts tracker rosters to and from the persisted cookie
// value. Only the roster is kept: initiative, turn state and the round phase
// are round-scoped and always start fresh after a restore.
package cookie

import (
	"github.com/KirkDiggler/initiative-tracker/internal/catalog"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/tracker"
)

// Name is the cookie the roster is stored under
const Name = "classes"

// RecordType tags a cookie record with the participant type it restores
type RecordType string

const (
	RecordCharacter = RecordType(tracker.KindCharacter)
	RecordMonster   = RecordType(tracker.KindMonster)
	RecordSummon    = RecordType(tracker.KindSummon)
	RecordAlly      = RecordType(tracker.KindAlly)
)

// Record is the minimal data needed to recreate one participant. A summon
// record names its owner by class and always follows the owner's record.
type Record struct {
	Type           RecordType             `json:"type"`
	Name           string                 `json:"name,omitempty"`
	CharacterClass catalog.CharacterClass `json:"characterClass,omitempty"`
	MonsterClass   catalog.MonsterClass   `json:"monsterClass,omitempty"`
	SummonClass    catalog.SummonClass    `json:"summonClass,omitempty"`
}

// Cookie is the ordered roster
type Cookie struct {
	Classes []Record `json:"classes"`
}

// Encode lists the roster in turn order with each character's summons right
// after it. A corrupted state cannot be encoded.
func Encode(s tracker.State) (Cookie, error) {
	ordered, err := s.Ordered()
	if err != nil {
		return Cookie{}, err
	}

	records := make([]Record, 0, len(ordered))
	for _, p := range ordered {
		r := Record{Type: RecordType(p.GetType())}
		switch v := p.(type) {
		case *tracker.Character:
			r.Name, r.CharacterClass = v.Name, v.Class
			records = append(records, r)
			for _, sm := range v.Summons {
				records = append(records, Record{
					Type:           RecordType(sm.GetType()),
					CharacterClass: v.Class,
					SummonClass:    sm.Class,
				})
			}
		case *tracker.Monster:
			r.MonsterClass = v.Class
			records = append(records, r)
		case *tracker.Ally:
			r.Name = v.Name
			records = append(records, r)
		case *tracker.Summon:
			return Cookie{}, errors.DataLossf("summon %s found in the turn order", v.GetID())
		}
	}
	return Cookie{Classes: records}, nil
}

// Config holds the codec's collaborators
type Config struct {
	Engine *tracker.Engine
}

// Validate checks the configuration
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Engine == nil {
		vb.RequiredField("engine")
	}
	return vb.Build()
}

// Codec restores rosters by replaying cookie records through the engine
type Codec struct {
	engine *tracker.Engine
}

// NewCodec creates a codec
func NewCodec(cfg *Config) (*Codec, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &Codec{engine: cfg.Engine}, nil
}

// Decode rebuilds a state from c. Any bad record rejects the whole cookie:
// the empty state is returned with the reason, never a partial roster.
// Summon records name their owner by class, so a class may appear in only
// one character record.
func (c *Codec) Decode(ck Cookie) (tracker.State, error) {
	s := tracker.NewState()
	owners := make(map[catalog.CharacterClass]bool)
	for i, r := range ck.Classes {
		if r.Type == RecordCharacter {
			if owners[r.CharacterClass] {
				return tracker.NewState(), errors.AlreadyExistsf(
					"cookie record %d repeats character class %d", i, r.CharacterClass)
			}
			owners[r.CharacterClass] = true
		}

		action, err := r.action()
		if err == nil {
			s, err = c.engine.Reduce(s, action)
		}
		if err != nil {
			return tracker.NewState(), errors.Wrapf(err, "cookie record %d rejected", i)
		}
	}
	return s, nil
}

func (r Record) action() (tracker.Action, error) {
	switch r.Type {
	case RecordCharacter:
		// summons are listed explicitly
		return tracker.AddCharacter{Name: r.Name, Class: r.CharacterClass, SkipAutoSummons: true}, nil
	case RecordMonster:
		return tracker.AddMonster{Class: r.MonsterClass}, nil
	case RecordSummon:
		return tracker.AddSummon{CharacterClass: r.CharacterClass, SummonClass: r.SummonClass}, nil
	case RecordAlly:
		return tracker.AddAlly{Name: r.Name}, nil
	default:
		return nil, errors.InvalidArgumentf("unknown record type %q", r.Type)
	}
}

package tracker

import (
	"slices"
	"strings"

	"github.com/KirkDiggler/initiative-tracker/internal/catalog"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
)

// Config holds the engine's collaborators
type Config struct {
	Catalog catalog.Lookup
}

// Validate checks the configuration
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Catalog == nil {
		vb.RequiredField("catalog")
	}
	return vb.Build()
}

// Engine applies actions to tracker states. It holds no state of its own.
type Engine struct {
	catalog catalog.Lookup
}

// NewEngine creates an engine reading class data from cfg.Catalog
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &Engine{catalog: cfg.Catalog}, nil
}

// Reduce returns the state that results from applying action to s. A
// rejected action returns s unchanged together with the reason. Actions on
// ids that are not tracked are no-ops.
func (e *Engine) Reduce(s State, action Action) (State, error) {
	switch a := action.(type) {
	case AddMonster:
		return e.addMonster(s, a)
	case AddCharacter:
		return e.addCharacter(s, a)
	case AddSummon:
		return e.addSummon(s, a)
	case AddAlly:
		return e.addAlly(s, a)
	case DeleteParticipant:
		return deleteParticipant(s, a)
	case DeleteSummon:
		return deleteSummon(s, a), nil
	case SetInitiative:
		return setInitiative(s, a)
	case SetTurnComplete:
		return setTurnComplete(s, a), nil
	case ResetForNewRound:
		return resetForNewRound(s), nil
	case BeginRound:
		return beginRound(s)
	case Shift:
		return shift(s, a)
	default:
		return s, errors.InvalidArgumentf("unsupported action %T", action)
	}
}

// ReduceAll applies actions in order, stopping at the first rejection. The
// returned state is the last one that was accepted.
func (e *Engine) ReduceAll(s State, actions ...Action) (State, error) {
	for _, a := range actions {
		next, err := e.Reduce(s, a)
		if err != nil {
			return s, err
		}
		s = next
	}
	return s, nil
}

func (e *Engine) addMonster(s State, a AddMonster) (State, error) {
	info, ok := e.catalog.Monster(a.Class)
	if !ok {
		return s, errors.InvalidArgumentf("unknown monster class %d", a.Class).
			WithMeta("monster_class", int(a.Class))
	}

	t := begin(s)
	id := t.allocID()
	t.put(&Monster{
		Base:  Base{ID: id, Name: info.Name, Icon: info.Icon},
		Class: a.Class,
	})
	t.appendOrder(id)
	return finish(s, t)
}

func (e *Engine) addCharacter(s State, a AddCharacter) (State, error) {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return s, errors.InvalidArgument("character name is required")
	}
	info, ok := e.catalog.Character(a.Class)
	if !ok {
		return s, errors.InvalidArgumentf("unknown character class %d", a.Class).
			WithMeta("character_class", int(a.Class))
	}

	t := begin(s)
	id := t.allocID()
	c := &Character{
		Base:  Base{ID: id, Name: name, Icon: info.Icon},
		Class: a.Class,
	}
	if !a.SkipAutoSummons {
		for _, class := range e.catalog.AutoSummons(a.Class) {
			summon, err := e.newSummon(t, c.ID, class)
			if err != nil {
				return s, err
			}
			c.Summons = append(c.Summons, summon)
		}
	}
	t.put(c)
	t.appendOrder(id)
	return finish(s, t)
}

func (e *Engine) addSummon(s State, a AddSummon) (State, error) {
	var owner *Character
	for _, c := range s.Characters() {
		if c.Class == a.CharacterClass {
			owner = c
			break
		}
	}
	if owner == nil {
		return s, errors.NotFoundf("no tracked character of class %d", a.CharacterClass).
			WithMeta("character_class", int(a.CharacterClass))
	}

	t := begin(s)
	summon, err := e.newSummon(t, owner.ID, a.SummonClass)
	if err != nil {
		return s, err
	}
	summons := append(slices.Clone(owner.Summons), summon)
	t.put(owner.withSummons(summons))
	return t.done(), nil
}

// newSummon allocates a summon. Summons joining a round already under way
// start with their turn complete so they are not shown as pending.
func (e *Engine) newSummon(t *txn, ownerID int, class catalog.SummonClass) (*Summon, error) {
	info, ok := e.catalog.Summon(class)
	if !ok {
		return nil, errors.InvalidArgumentf("unknown summon class %d", class).
			WithMeta("summon_class", int(class))
	}
	return &Summon{
		Base: Base{
			ID:           t.allocID(),
			Name:         info.Name,
			Icon:         info.Icon,
			TurnComplete: t.s.Phase() == PhaseInitiativesChosen,
		},
		CharacterID: ownerID,
		Class:       class,
	}, nil
}

func (e *Engine) addAlly(s State, a AddAlly) (State, error) {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return s, errors.InvalidArgument("ally name is required")
	}

	t := begin(s)
	id := t.allocID()
	t.put(&Ally{Base: Base{ID: id, Name: name}})
	t.appendOrder(id)
	return finish(s, t)
}

func deleteParticipant(s State, a DeleteParticipant) (State, error) {
	if _, ok := s.participants[a.ID]; !ok {
		return s, nil
	}

	t := begin(s)
	t.remove(a.ID)
	t.removeOrder(a.ID)
	return finish(s, t)
}

func deleteSummon(s State, a DeleteSummon) State {
	c, ok := s.participants[a.CharacterID].(*Character)
	if !ok {
		return s
	}
	_, idx, ok := c.FindSummon(a.SummonID)
	if !ok {
		return s
	}

	t := begin(s)
	t.put(c.withSummons(slices.Delete(slices.Clone(c.Summons), idx, idx+1)))
	return t.done()
}

func setInitiative(s State, a SetInitiative) (State, error) {
	if a.Value != NoInitiative && (a.Value < MinInitiative || a.Value > MaxInitiative) {
		return s, errors.OutOfRangef("initiative must be between %d and %d, got %d",
			MinInitiative, MaxInitiative, a.Value).WithMeta("participant_id", a.ID)
	}
	p, ok := s.participants[a.ID]
	if !ok || p.Common().Initiative == a.Value {
		return s, nil
	}

	t := begin(s)
	t.put(withBase(p, func(b *Base) { b.Initiative = a.Value }))
	return finish(s, t)
}

func setTurnComplete(s State, a SetTurnComplete) State {
	if p, ok := s.participants[a.ID]; ok {
		if p.Common().TurnComplete == a.Value {
			return s
		}
		t := begin(s)
		t.put(withBase(p, func(b *Base) { b.TurnComplete = a.Value }))
		return t.done()
	}

	c, summon, ok := s.FindSummon(a.ID)
	if !ok || summon.TurnComplete == a.Value {
		return s
	}
	updated := c.mapSummons(func(sm *Summon) *Summon {
		if sm.ID != a.ID {
			return sm
		}
		return withBase(sm, func(b *Base) { b.TurnComplete = a.Value }).(*Summon)
	})
	t := begin(s)
	t.put(updated)
	return t.done()
}

func resetForNewRound(s State) State {
	reset := func(b *Base) {
		b.Initiative = NoInitiative
		b.TurnComplete = false
		b.TiedWithPrevious = false
		b.TiedWithNext = false
	}
	isClear := func(b Base) bool {
		return b.Initiative == NoInitiative && !b.TurnComplete && !b.TiedWithPrevious && !b.TiedWithNext
	}

	t := begin(s)
	for _, p := range s.participants {
		next := p
		if !isClear(p.Common()) {
			next = withBase(p, reset)
		}
		if c, ok := next.(*Character); ok {
			next = c.mapSummons(func(sm *Summon) *Summon {
				if isClear(sm.Base) {
					return sm
				}
				return withBase(sm, reset).(*Summon)
			})
		}
		if next != p {
			t.put(next)
		}
	}
	t.s.tieExists = false
	t.s.phase = PhaseChoosingInitiative
	return t.done()
}

func beginRound(s State) (State, error) {
	t := begin(s)
	for _, id := range s.order {
		p, ok := s.participants[id]
		if !ok {
			return s, corrupted(id)
		}
		if !p.Common().HasInitiative() {
			t.put(withBase(p, func(b *Base) { b.Initiative = DefaultInitiative }))
		}
	}

	initiative := func(id int) int {
		return t.s.participants[id].Common().Initiative
	}
	sorted := slices.IsSortedFunc(s.order, func(a, b int) int {
		return initiative(a) - initiative(b)
	})
	if !sorted {
		order := t.mutableOrder()
		slices.SortStableFunc(order, func(a, b int) int {
			return initiative(a) - initiative(b)
		})
	}
	t.s.phase = PhaseInitiativesChosen
	return finish(s, t)
}

func shift(s State, a Shift) (State, error) {
	idx := slices.Index(s.order, a.ID)
	if idx < 0 {
		return s, nil
	}

	var neighbour int
	switch a.Direction {
	case DirectionUp:
		neighbour = idx - 1
	case DirectionDown:
		neighbour = idx + 1
	default:
		return s, errors.InvalidArgumentf("unknown shift direction %d", a.Direction)
	}
	if neighbour < 0 || neighbour >= len(s.order) {
		return s, errors.OutOfRangef("participant %d cannot move %s", a.ID, a.Direction).
			WithMeta("participant_id", a.ID)
	}

	t := begin(s)
	order := t.mutableOrder()
	order[idx], order[neighbour] = order[neighbour], order[idx]
	return finish(s, t)
}

// finish recomputes the tie flags and returns the built state. A corrupted
// order aborts the transition and leaves from as it was.
func finish(from State, t *txn) (State, error) {
	if err := recomputeTies(t); err != nil {
		return from, err
	}
	return t.done(), nil
}

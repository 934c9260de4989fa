package tracker

import (
	"maps"
	"slices"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
)

// Phase is the round lifecycle stage
type Phase string

const (
	PhaseChoosingInitiative Phase = "choosingInitiative"
	PhaseInitiativesChosen  Phase = "initiativesChosen"
)

// State is an immutable snapshot of the tracker. The zero value is the
// empty roster in the choosing phase.
type State struct {
	participants map[int]Participant
	order        []int
	nextID       int
	phase        Phase
	tieExists    bool
}

// NewState returns the empty initial state
func NewState() State {
	return State{phase: PhaseChoosingInitiative}
}

// Get returns a top-level participant. Summons are reached through their character.
func (s State) Get(id int) (Participant, bool) {
	p, ok := s.participants[id]
	return p, ok
}

// Order returns the turn order of top-level participants
func (s State) Order() []int {
	return slices.Clone(s.order)
}

// Len returns the number of top-level participants
func (s State) Len() int {
	return len(s.participants)
}

// NextID is the id the next created participant will receive
func (s State) NextID() int {
	return s.nextID
}

// Phase returns the round phase
func (s State) Phase() Phase {
	if s.phase == "" {
		return PhaseChoosingInitiative
	}
	return s.phase
}

// TieExists reports whether any two adjacent participants share an initiative
func (s State) TieExists() bool {
	return s.tieExists
}

// Ordered returns the top-level participants in turn order. An ordered id
// with no participant behind it is reported as DataLoss.
func (s State) Ordered() ([]Participant, error) {
	out := make([]Participant, 0, len(s.order))
	for _, id := range s.order {
		p, ok := s.participants[id]
		if !ok {
			return nil, corrupted(id)
		}
		out = append(out, p)
	}
	return out, nil
}

// Characters returns the tracked characters in turn order, skipping nothing
// but non-characters.
func (s State) Characters() []*Character {
	var out []*Character
	for _, id := range s.order {
		if c, ok := s.participants[id].(*Character); ok {
			out = append(out, c)
		}
	}
	return out
}

// FindSummon locates a nested summon by id
func (s State) FindSummon(id int) (*Character, *Summon, bool) {
	for _, c := range s.Characters() {
		if summon, _, ok := c.FindSummon(id); ok {
			return c, summon, true
		}
	}
	return nil, nil, false
}

// IsCorrupted reports whether err signals an internal invariant violation
func IsCorrupted(err error) bool {
	return errors.IsDataLoss(err)
}

func corrupted(id int) error {
	return errors.DataLossf("tracker state corruption detected: ordered id %d has no participant", id).
		WithMeta("participant_id", id)
}

// txn builds the next State, copying the participant map and order only
// when they change so untouched participants keep their identity.
type txn struct {
	s        State
	ownMap   bool
	ownOrder bool
}

func begin(s State) *txn {
	return &txn{s: s}
}

func (t *txn) allocID() int {
	id := t.s.nextID
	t.s.nextID++
	return id
}

func (t *txn) put(p Participant) {
	if !t.ownMap {
		t.s.participants = maps.Clone(t.s.participants)
		if t.s.participants == nil {
			t.s.participants = make(map[int]Participant)
		}
		t.ownMap = true
	}
	t.s.participants[p.Common().ID] = p
}

func (t *txn) remove(id int) {
	if _, ok := t.s.participants[id]; !ok {
		return
	}
	if !t.ownMap {
		t.s.participants = maps.Clone(t.s.participants)
		t.ownMap = true
	}
	delete(t.s.participants, id)
}

func (t *txn) mutableOrder() []int {
	if !t.ownOrder {
		t.s.order = slices.Clone(t.s.order)
		t.ownOrder = true
	}
	return t.s.order
}

func (t *txn) appendOrder(id int) {
	t.s.order = append(t.mutableOrder(), id)
}

func (t *txn) removeOrder(id int) {
	t.s.order = slices.DeleteFunc(t.mutableOrder(), func(o int) bool { return o == id })
}

func (t *txn) done() State {
	return t.s
}

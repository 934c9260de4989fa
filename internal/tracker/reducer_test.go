package tracker_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/initiative-tracker/internal/catalog"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/tracker"
)

const (
	mindthief   catalog.CharacterClass = 1
	brute       catalog.CharacterClass = 5
	beastTyrant catalog.CharacterClass = 7

	banditGuard catalog.MonsterClass = 3
	livingBones catalog.MonsterClass = 21

	ratSwarm catalog.SummonClass = 5
	ratKing  catalog.SummonClass = 7
	bear     catalog.SummonClass = 13
)

type ReducerTestSuite struct {
	suite.Suite
	engine *tracker.Engine
}

func TestReducerSuite(t *testing.T) {
	suite.Run(t, new(ReducerTestSuite))
}

func (s *ReducerTestSuite) SetupTest() {
	var err error
	s.engine, err = tracker.NewEngine(&tracker.Config{Catalog: catalog.Default()})
	s.Require().NoError(err)
}

func (s *ReducerTestSuite) reduce(st tracker.State, actions ...tracker.Action) tracker.State {
	out, err := s.engine.ReduceAll(st, actions...)
	s.Require().NoError(err)
	return out
}

func (s *ReducerTestSuite) base(st tracker.State, id int) tracker.Base {
	p, ok := st.Get(id)
	s.Require().True(ok, "participant %d should be tracked", id)
	return p.Common()
}

func (s *ReducerTestSuite) TestNewEngineRequiresCatalog() {
	_, err := tracker.NewEngine(&tracker.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = tracker.NewEngine(nil)
	s.Require().Error(err)
}

func (s *ReducerTestSuite) TestAddMonster() {
	st := s.reduce(tracker.NewState(), tracker.AddMonster{Class: banditGuard})

	s.Equal([]int{0}, st.Order())
	s.Equal(1, st.NextID())
	p, ok := st.Get(0)
	s.Require().True(ok)
	m, ok := p.(*tracker.Monster)
	s.Require().True(ok)
	s.Equal("Bandit Guard", m.Name)
	s.Equal(banditGuard, m.Class)
	s.Equal("monster", m.GetType())
	s.Equal("0", m.GetID())
}

func (s *ReducerTestSuite) TestAddRejectsUnknownClass() {
	start := s.reduce(tracker.NewState(), tracker.AddAlly{Name: "Hail"})

	testCases := []struct {
		name   string
		action tracker.Action
		check  func(error) bool
	}{
		{"monster", tracker.AddMonster{Class: 999}, errors.IsInvalidArgument},
		{"character", tracker.AddCharacter{Name: "X", Class: 0}, errors.IsInvalidArgument},
		{"blank character name", tracker.AddCharacter{Name: "  ", Class: brute}, errors.IsInvalidArgument},
		{"blank ally name", tracker.AddAlly{Name: ""}, errors.IsInvalidArgument},
		{"summon without owner", tracker.AddSummon{CharacterClass: brute, SummonClass: ratSwarm}, errors.IsNotFound},
		{"nil action", nil, errors.IsInvalidArgument},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			out, err := s.engine.Reduce(start, tc.action)
			s.Require().Error(err)
			s.True(tc.check(err), "unexpected code %s", errors.GetCode(err))
			s.Equal(start, out)
		})
	}
}

func (s *ReducerTestSuite) TestAddCharacterCreatesAutoSummons() {
	st := s.reduce(tracker.NewState(), tracker.AddCharacter{Name: "Ada", Class: beastTyrant})

	p, _ := st.Get(0)
	c := p.(*tracker.Character)
	s.Require().Len(c.Summons, 1)
	s.Equal(bear, c.Summons[0].Class)
	s.Equal(1, c.Summons[0].ID)
	s.Equal(0, c.Summons[0].CharacterID)
	s.False(c.Summons[0].TurnComplete)
	s.Equal([]int{0}, st.Order())
	s.Equal(2, st.NextID())

	st = s.reduce(tracker.NewState(), tracker.AddCharacter{Name: "Ada", Class: beastTyrant, SkipAutoSummons: true})
	p, _ = st.Get(0)
	s.Empty(p.(*tracker.Character).Summons)
}

func (s *ReducerTestSuite) TestIDsAreNeverReused() {
	st := tracker.NewState()
	highest := -1
	actions := []tracker.Action{
		tracker.AddMonster{Class: banditGuard},
		tracker.AddCharacter{Name: "Ada", Class: beastTyrant},
		tracker.DeleteParticipant{ID: 0},
		tracker.AddAlly{Name: "Hail"},
		tracker.DeleteParticipant{ID: 3},
		tracker.AddCharacter{Name: "Bo", Class: mindthief},
		tracker.AddSummon{CharacterClass: mindthief, SummonClass: ratKing},
		tracker.DeleteSummon{CharacterID: 4, SummonID: 5},
		tracker.AddMonster{Class: banditGuard},
	}

	for _, a := range actions {
		before := st.NextID()
		st = s.reduce(st, a)
		for id := before; id < st.NextID(); id++ {
			s.Greater(id, highest)
			highest = id
		}
	}
	s.Equal(7, st.NextID())
	s.Equal([]int{1, 4, 6}, st.Order())
}

func (s *ReducerTestSuite) TestAddSummonKeepsOrder() {
	st := s.reduce(tracker.NewState(),
		tracker.AddCharacter{Name: "Bo", Class: mindthief},
		tracker.AddMonster{Class: livingBones},
	)
	order := st.Order()
	monster, _ := st.Get(1)

	st = s.reduce(st, tracker.AddSummon{CharacterClass: mindthief, SummonClass: ratSwarm})

	s.Equal(order, st.Order())
	s.Equal(2, st.Len())
	p, _ := st.Get(0)
	summons := p.(*tracker.Character).Summons
	s.Require().Len(summons, 1)
	s.Equal("Rat Swarm", summons[0].Name)
	s.Equal(2, summons[0].ID)

	same, _ := st.Get(1)
	s.Same(monster, same, "untouched participants keep their identity")
}

func (s *ReducerTestSuite) TestSummonJoiningRunningRound() {
	st := s.reduce(tracker.NewState(),
		tracker.AddCharacter{Name: "Bo", Class: mindthief},
		tracker.BeginRound{},
		tracker.AddSummon{CharacterClass: mindthief, SummonClass: ratSwarm},
	)
	p, _ := st.Get(0)
	s.True(p.(*tracker.Character).Summons[0].TurnComplete)
}

func (s *ReducerTestSuite) TestDeleteParticipant() {
	st := s.reduce(tracker.NewState(),
		tracker.AddAlly{Name: "A"},
		tracker.AddAlly{Name: "B"},
		tracker.AddAlly{Name: "C"},
		tracker.SetInitiative{ID: 0, Value: 10},
		tracker.SetInitiative{ID: 2, Value: 10},
	)
	s.False(st.TieExists())

	st = s.reduce(st, tracker.DeleteParticipant{ID: 1})
	_, ok := st.Get(1)
	s.False(ok)
	s.Equal([]int{0, 2}, st.Order())
	s.True(st.TieExists(), "removing the middle participant exposes the tie")
	s.True(s.base(st, 0).TiedWithNext)
	s.True(s.base(st, 2).TiedWithPrevious)
}

func (s *ReducerTestSuite) TestDeleteUnknownIsNoop() {
	st := s.reduce(tracker.NewState(), tracker.AddAlly{Name: "A"}, tracker.AddMonster{Class: banditGuard})

	testCases := []struct {
		name   string
		action tracker.Action
	}{
		{"participant", tracker.DeleteParticipant{ID: 42}},
		{"summon of unknown character", tracker.DeleteSummon{CharacterID: 42, SummonID: 1}},
		{"summon not owned", tracker.DeleteSummon{CharacterID: 0, SummonID: 1}},
		{"initiative", tracker.SetInitiative{ID: 42, Value: 4}},
		{"turn complete", tracker.SetTurnComplete{ID: 42, Value: true}},
		{"shift", tracker.Shift{ID: 42, Direction: tracker.DirectionUp}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			out, err := s.engine.Reduce(st, tc.action)
			s.Require().NoError(err)
			s.Equal(st, out)
		})
	}
}

func (s *ReducerTestSuite) TestDeleteSummon() {
	st := s.reduce(tracker.NewState(),
		tracker.AddCharacter{Name: "Bo", Class: mindthief},
		tracker.AddSummon{CharacterClass: mindthief, SummonClass: ratSwarm},
		tracker.AddSummon{CharacterClass: mindthief, SummonClass: ratKing},
	)
	before, _ := st.Get(0)

	st = s.reduce(st, tracker.DeleteSummon{CharacterID: 0, SummonID: 1})

	p, _ := st.Get(0)
	summons := p.(*tracker.Character).Summons
	s.Require().Len(summons, 1)
	s.Equal(ratKing, summons[0].Class)
	s.Len(before.(*tracker.Character).Summons, 2, "previous state is untouched")
}

func (s *ReducerTestSuite) TestSetInitiative() {
	st := s.reduce(tracker.NewState(), tracker.AddAlly{Name: "A"})

	st = s.reduce(st, tracker.SetInitiative{ID: 0, Value: 12})
	s.Equal(12, s.base(st, 0).Initiative)

	st = s.reduce(st, tracker.SetInitiative{ID: 0, Value: tracker.NoInitiative})
	s.False(s.base(st, 0).HasInitiative())

	for _, v := range []int{-1, 100} {
		out, err := s.engine.Reduce(st, tracker.SetInitiative{ID: 0, Value: v})
		s.Require().Error(err)
		s.True(errors.IsOutOfRange(err))
		s.Equal(st, out)
	}
}

func (s *ReducerTestSuite) TestSetTurnComplete() {
	st := s.reduce(tracker.NewState(),
		tracker.AddCharacter{Name: "Ada", Class: beastTyrant},
		tracker.AddMonster{Class: banditGuard},
	)

	s.Run("top level", func() {
		out := s.reduce(st, tracker.SetTurnComplete{ID: 2, Value: true})
		s.True(s.base(out, 2).TurnComplete)
	})

	s.Run("nested summon", func() {
		out := s.reduce(st, tracker.SetTurnComplete{ID: 1, Value: true})
		p, _ := out.Get(0)
		c := p.(*tracker.Character)
		s.False(c.TurnComplete)
		s.True(c.Summons[0].TurnComplete)
	})

	s.Run("unchanged value keeps state", func() {
		out := s.reduce(st, tracker.SetTurnComplete{ID: 2, Value: false})
		s.Equal(st, out)
	})
}

func (s *ReducerTestSuite) TestBeginRoundOrdersByInitiative() {
	st := s.reduce(tracker.NewState(),
		tracker.AddAlly{Name: "A"},
		tracker.AddAlly{Name: "B"},
		tracker.AddAlly{Name: "C"},
		tracker.AddAlly{Name: "D"},
		tracker.SetInitiative{ID: 0, Value: 5},
		tracker.SetInitiative{ID: 1, Value: 3},
		tracker.SetInitiative{ID: 2, Value: 5},
	)
	s.False(st.TieExists())

	st = s.reduce(st, tracker.BeginRound{})

	s.Equal([]int{1, 0, 2, 3}, st.Order())
	s.Equal(tracker.PhaseInitiativesChosen, st.Phase())
	s.Equal(tracker.DefaultInitiative, s.base(st, 3).Initiative)
	s.True(st.TieExists())
	s.True(s.base(st, 0).TiedWithNext)
	s.True(s.base(st, 2).TiedWithPrevious)
	s.False(s.base(st, 0).TiedWithPrevious)
	s.False(s.base(st, 3).TiedWithPrevious)

	again := s.reduce(st, tracker.BeginRound{})
	s.Equal(st, again)
}

func (s *ReducerTestSuite) TestResetForNewRound() {
	st := s.reduce(tracker.NewState(),
		tracker.AddCharacter{Name: "Ada", Class: beastTyrant},
		tracker.AddAlly{Name: "B"},
		tracker.SetInitiative{ID: 0, Value: 20},
		tracker.SetInitiative{ID: 2, Value: 20},
		tracker.BeginRound{},
		tracker.SetTurnComplete{ID: 0, Value: true},
		tracker.SetTurnComplete{ID: 1, Value: true},
	)
	s.True(st.TieExists())

	once := s.reduce(st, tracker.ResetForNewRound{})
	twice := s.reduce(once, tracker.ResetForNewRound{})

	s.Equal(once, twice)
	s.Equal(tracker.PhaseChoosingInitiative, once.Phase())
	s.False(once.TieExists())
	ordered, err := once.Ordered()
	s.Require().NoError(err)
	for _, p := range ordered {
		b := p.Common()
		s.False(b.HasInitiative())
		s.False(b.TurnComplete)
		s.False(b.TiedWithPrevious || b.TiedWithNext)
	}
	p, _ := once.Get(0)
	s.False(p.(*tracker.Character).Summons[0].TurnComplete)
	s.Equal(st.Order(), once.Order())
}

func (s *ReducerTestSuite) TestShift() {
	st := s.reduce(tracker.NewState(),
		tracker.AddAlly{Name: "A"},
		tracker.AddAlly{Name: "B"},
		tracker.SetInitiative{ID: 0, Value: 7},
		tracker.SetInitiative{ID: 1, Value: 7},
		tracker.BeginRound{},
	)

	down := s.reduce(st, tracker.Shift{ID: 0, Direction: tracker.DirectionDown})
	s.Equal([]int{1, 0}, down.Order())
	s.True(s.base(down, 1).TiedWithNext)
	s.True(s.base(down, 0).TiedWithPrevious)

	up := s.reduce(down, tracker.Shift{ID: 0, Direction: tracker.DirectionUp})
	s.Equal([]int{0, 1}, up.Order())

	testCases := []struct {
		name   string
		action tracker.Shift
	}{
		{"first up", tracker.Shift{ID: 0, Direction: tracker.DirectionUp}},
		{"last down", tracker.Shift{ID: 1, Direction: tracker.DirectionDown}},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			out, err := s.engine.Reduce(st, tc.action)
			s.Require().Error(err)
			s.True(errors.IsOutOfRange(err))
			s.Equal(st, out)
		})
	}
}

func (s *ReducerTestSuite) TestTieFlagsAreSymmetric() {
	rng := rand.New(rand.NewSource(7))
	st := tracker.NewState()
	for i := 0; i < 6; i++ {
		st = s.reduce(st, tracker.AddAlly{Name: string(rune('A' + i))})
	}

	for step := 0; step < 200; step++ {
		order := st.Order()
		id := order[rng.Intn(len(order))]
		var action tracker.Action
		switch rng.Intn(4) {
		case 0:
			action = tracker.SetInitiative{ID: id, Value: rng.Intn(4)}
		case 1:
			action = tracker.BeginRound{}
		case 2:
			action = tracker.ResetForNewRound{}
		default:
			action = tracker.Shift{ID: id, Direction: tracker.Direction(rng.Intn(2) + 1)}
		}
		if next, err := s.engine.Reduce(st, action); err == nil {
			st = next
		}

		ordered, err := st.Ordered()
		s.Require().NoError(err)
		anyTie := false
		for i := 0; i < len(ordered)-1; i++ {
			a, b := ordered[i].Common(), ordered[i+1].Common()
			s.Equal(a.TiedWithNext, b.TiedWithPrevious)
			want := a.HasInitiative() && b.HasInitiative() && a.Initiative == b.Initiative
			s.Equal(want, a.TiedWithNext)
			anyTie = anyTie || want
		}
		s.False(ordered[0].Common().TiedWithPrevious)
		s.False(ordered[len(ordered)-1].Common().TiedWithNext)
		s.Equal(anyTie, st.TieExists())
	}
}

func (s *ReducerTestSuite) TestZeroStateIsEmpty() {
	var st tracker.State
	s.Equal(tracker.PhaseChoosingInitiative, st.Phase())
	s.Equal(0, st.Len())

	st = s.reduce(st, tracker.AddAlly{Name: "A"})
	s.Equal(1, st.Len())
}

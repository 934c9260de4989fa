package tracker_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/initiative-tracker/internal/catalog"
	"github.com/KirkDiggler/initiative-tracker/internal/tracker"
)

type RosterTestSuite struct {
	suite.Suite
	engine *tracker.Engine
}

func TestRosterSuite(t *testing.T) {
	suite.Run(t, new(RosterTestSuite))
}

func (s *RosterTestSuite) SetupTest() {
	var err error
	s.engine, err = tracker.NewEngine(&tracker.Config{Catalog: catalog.Default()})
	s.Require().NoError(err)
}

func (s *RosterTestSuite) build(actions ...tracker.Action) tracker.State {
	st, err := s.engine.ReduceAll(tracker.NewState(), actions...)
	s.Require().NoError(err)
	return st
}

func (s *RosterTestSuite) TestExistingFigures() {
	st := s.build(
		tracker.AddCharacter{Name: "Bo", Class: mindthief},
		tracker.AddSummon{CharacterClass: mindthief, SummonClass: ratKing},
		tracker.AddMonster{Class: livingBones},
		tracker.AddAlly{Name: "Hail"},
	)

	f := tracker.ExistingFigures(st)
	s.True(f.Characters[mindthief])
	s.False(f.Characters[brute])
	s.True(f.Monsters[livingBones])
	s.True(f.Allies["Hail"])
	s.True(f.HasSummon(mindthief, ratKing))
	s.False(f.HasSummon(mindthief, ratSwarm))
	s.False(f.HasSummon(brute, ratKing))
}

func (s *RosterTestSuite) TestRosterEqualIgnoresRoundState() {
	a := s.build(
		tracker.AddCharacter{Name: "Bo", Class: mindthief},
		tracker.AddAlly{Name: "Hail"},
	)
	b, err := s.engine.ReduceAll(a,
		tracker.SetInitiative{ID: 0, Value: 40},
		tracker.SetInitiative{ID: 1, Value: 40},
		tracker.SetTurnComplete{ID: 0, Value: true},
	)
	s.Require().NoError(err)

	s.True(tracker.RosterEqual(a, b))
}

func (s *RosterTestSuite) TestRosterEqualIgnoresIDs() {
	a := s.build(tracker.AddAlly{Name: "Hail"})
	b := s.build(
		tracker.AddMonster{Class: banditGuard},
		tracker.DeleteParticipant{ID: 0},
		tracker.AddAlly{Name: "Hail"},
	)
	s.True(tracker.RosterEqual(a, b))
}

func (s *RosterTestSuite) TestRosterEqualDetectsDifferences() {
	base := s.build(
		tracker.AddCharacter{Name: "Bo", Class: mindthief},
		tracker.AddMonster{Class: banditGuard},
	)

	testCases := []struct {
		name  string
		other tracker.State
	}{
		{"order", s.build(
			tracker.AddMonster{Class: banditGuard},
			tracker.AddCharacter{Name: "Bo", Class: mindthief},
		)},
		{"name", s.build(
			tracker.AddCharacter{Name: "Bob", Class: mindthief},
			tracker.AddMonster{Class: banditGuard},
		)},
		{"summons", s.build(
			tracker.AddCharacter{Name: "Bo", Class: mindthief},
			tracker.AddSummon{CharacterClass: mindthief, SummonClass: ratSwarm},
			tracker.AddMonster{Class: banditGuard},
		)},
		{"missing", s.build(tracker.AddCharacter{Name: "Bo", Class: mindthief})},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.False(tracker.RosterEqual(base, tc.other))
		})
	}
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/initiative-tracker/internal/config"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/idgen"
	"github.com/KirkDiggler/initiative-tracker/internal/repositories/cookies"
	cookiesmock "github.com/KirkDiggler/initiative-tracker/internal/repositories/cookies/mock"
	"github.com/KirkDiggler/initiative-tracker/internal/tracker"
)

type AppTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo cookies.Repository
	out  *bytes.Buffer
	app  *app
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}

func (s *AppTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = cookies.NewInMemory(&cookies.InMemoryConfig{TTL: time.Hour})
	s.app = s.newApp()
}

func (s *AppTestSuite) newApp() *app {
	s.out = &bytes.Buffer{}
	cfg := &config.Config{
		Session:   "table-1",
		Store:     config.StoreMemory,
		CookieTTL: time.Hour,
		IconBase:  "/images/",
		LogLevel:  "error",
	}
	a, err := newApp(cfg, s.repo, s.out)
	s.Require().NoError(err)
	_, err = a.open(s.ctx)
	s.Require().NoError(err)
	return a
}

func (s *AppTestSuite) run(line string) error {
	_, err := s.app.execute(s.ctx, strings.Fields(line))
	return err
}

func (s *AppTestSuite) TestAddRefusesDuplicates() {
	s.Require().NoError(s.run("add character mindthief Bo"))
	s.Require().NoError(s.run("add monster banditGuard"))
	s.Require().NoError(s.run("add ally Hail"))
	s.Require().NoError(s.run("add summon mindthief ratKing"))

	testCases := []struct {
		name string
		line string
	}{
		{"same character class", "add character 1 Other"},
		{"same monster", "add monster 3"},
		{"same ally name", "add ally Hail"},
		{"same summon", "add summon mindthief ratking"},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := s.run(tc.line)
			s.Require().Error(err)
			s.True(errors.IsAlreadyExists(err))
		})
	}
}

func (s *AppTestSuite) TestAddRejectsBadInput() {
	s.Require().NoError(s.run("add character brute Ada"))

	testCases := []struct {
		name string
		line string
	}{
		{"unknown character class", "add character wizard Merlin"},
		{"missing name", "add character scoundrel"},
		{"unknown monster", "add monster dragon"},
		{"summon the class cannot use", "add summon brute ratKing"},
		{"empty ally", "add ally"},
		{"unknown kind", "add dragon"},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := s.run(tc.line)
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *AppTestSuite) TestItemSummonForAnyClass() {
	s.Require().NoError(s.run("add character brute Ada"))
	s.Require().NoError(s.run("add summon brute skeleton"))

	st, err := s.app.state(s.ctx)
	s.Require().NoError(err)
	chars := st.Characters()
	s.Require().Len(chars, 1)
	s.Require().Len(chars[0].Summons, 1)
	s.Equal("Skeleton", chars[0].Summons[0].Name)
}

func (s *AppTestSuite) TestRoundFlow() {
	for _, line := range []string{
		"add character mindthief Bo",
		"add monster banditGuard",
		"add ally Hail",
		"init 0 40",
		"init 1 12",
		"begin",
		"done 1",
	} {
		s.Require().NoError(s.run(line), line)
	}

	st, err := s.app.state(s.ctx)
	s.Require().NoError(err)
	s.Equal(tracker.PhaseInitiativesChosen, st.Phase())
	s.Equal([]int{1, 0, 2}, st.Order())
	p, _ := st.Get(1)
	s.True(p.Common().TurnComplete)
	ally, _ := st.Get(2)
	s.Equal(tracker.DefaultInitiative, ally.Common().Initiative)

	s.Contains(s.out.String(), "initiatives chosen")
	s.Contains(s.out.String(), "Bandit Guard")

	s.Require().NoError(s.run("reset"))
	st, err = s.app.state(s.ctx)
	s.Require().NoError(err)
	s.Equal(tracker.PhaseChoosingInitiative, st.Phase())
}

func (s *AppTestSuite) TestInitiativeInput() {
	s.Require().NoError(s.run("add monster 3"))

	s.Require().NoError(s.run("init 0 150"))
	p, _ := s.mustState().Get(0)
	s.Equal(tracker.MaxInitiative, p.Common().Initiative)

	s.Require().NoError(s.run("init 0 -"))
	p, _ = s.mustState().Get(0)
	s.False(p.Common().HasInitiative())

	err := s.run("init x 5")
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	err = s.run("done 0 maybe")
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *AppTestSuite) TestShiftAtEdge() {
	s.Require().NoError(s.run("add monster 3"))
	s.Require().NoError(s.run("add monster 21"))

	err := s.run("up 0")
	s.Require().Error(err)
	s.True(errors.IsOutOfRange(err))

	s.Require().NoError(s.run("down 0"))
	s.Equal([]int{1, 0}, s.mustState().Order())
}

func (s *AppTestSuite) TestRosterSurvivesRestart() {
	s.Require().NoError(s.run("add character beastTyrant Ada"))
	s.Require().NoError(s.run("add ally Hail"))
	s.Require().NoError(s.run("init 0 10"))
	before := s.mustState()

	s.app = s.newApp()
	after := s.mustState()

	s.True(tracker.RosterEqual(before, after))
	p, _ := after.Get(0)
	s.False(p.Common().HasInitiative())
}

func (s *AppTestSuite) TestPlayKeepsGoingAfterErrors() {
	in := strings.NewReader("add monster 3\nbogus\nadd monster 3\nshow\nquit\nadd ally Late\n")

	s.Require().NoError(s.app.play(s.ctx, in))

	out := s.out.String()
	s.Contains(out, `unknown command "bogus"`)
	s.Contains(out, "already tracked")
	s.Equal(1, s.mustState().Len())
}

func (s *AppTestSuite) TestPlayPrintsRejectionsPlainly() {
	in := strings.NewReader("add monster 3\nup 0\nadd character wizard Merlin\nquit\n")

	s.Require().NoError(s.app.play(s.ctx, in))

	out := s.out.String()
	s.Contains(out, "participant 0 cannot move up")
	s.Contains(out, `unknown character class "wizard"`)
	s.NotContains(out, string(errors.CodeOutOfRange))
	s.NotContains(out, string(errors.CodeInvalidArgument))
	s.NotContains(out, "Command failed")
}

func (s *AppTestSuite) TestPlayReportsStoreFailures() {
	ctrl := gomock.NewController(s.T())
	repo := cookiesmock.NewMockRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(nil, errors.NotFoundf("no cookie stored for session %s", "table-1"))
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).
		Return(nil, errors.WrapWithCode(fmt.Errorf("connection refused"), errors.CodeUnavailable, "failed to save cookie")).
		Times(2)
	s.repo = repo
	s.app = s.newApp()

	in := strings.NewReader("add monster 3\nadd ally Hail\nquit\n")
	s.Require().NoError(s.app.play(s.ctx, in))

	out := s.out.String()
	s.Equal(2, strings.Count(out, "Command failed"))
	s.Contains(out, string(errors.CodeUnavailable))
	// the live roster keeps the change even though it was not saved
	s.Equal(2, s.mustState().Len())
}

func (s *AppTestSuite) TestSessionNewPrintsFreshID() {
	previous := sessionIDs
	sessionIDs = idgen.NewSequential("session")
	s.T().Cleanup(func() {
		sessionIDs = previous
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"session", "new"})
	s.Require().NoError(rootCmd.Execute())
	rootCmd.SetArgs([]string{"session", "new"})
	s.Require().NoError(rootCmd.Execute())

	s.Equal("session_1\nsession_2\n", out.String())
}

func (s *AppTestSuite) TestPlayStopsAtEndOfInput() {
	s.Require().NoError(s.app.play(s.ctx, strings.NewReader("add ally Hail\n")))
	s.Equal(1, s.mustState().Len())
}

func (s *AppTestSuite) TestShowListsIconsAndTypes() {
	s.Require().NoError(s.run("add character mindthief Bo"))
	s.Require().NoError(s.run("add summon mindthief ratKing"))
	s.Require().NoError(s.run("add monster banditGuard"))
	s.Require().NoError(s.run("add ally Hail"))

	s.out.Reset()
	s.Require().NoError(s.run("show"))

	lines := strings.Split(s.out.String(), "\n")
	s.Require().GreaterOrEqual(len(lines), 6)
	s.Contains(lines[2], "Mindthief")
	s.Contains(lines[2], "/images/characters/mindthief.png")
	s.Contains(lines[3], "+ Rat King")
	s.Contains(lines[3], "summon")
	s.Contains(lines[4], "Bandit Guard")
	s.Contains(lines[4], "monster")
	s.Contains(lines[5], "Hail")
	s.Contains(lines[5], "ally")
}

func (s *AppTestSuite) TestClassesListing() {
	s.Require().NoError(s.run("classes summons"))
	s.Contains(s.out.String(), "Rat King")
	s.NotContains(s.out.String(), "Bandit Guard")

	err := s.run("classes dragons")
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *AppTestSuite) mustState() tracker.State {
	st, err := s.app.state(s.ctx)
	s.Require().NoError(err)
	return st
}

package cookies_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/clock"
	"github.com/KirkDiggler/initiative-tracker/internal/repositories/cookies"
	"github.com/KirkDiggler/initiative-tracker/internal/testutils"
)

const testTTL = time.Hour

// RepositoryTestSuite runs the same behaviour checks against every backend
type RepositoryTestSuite struct {
	suite.Suite
	ctx   context.Context
	clock *clock.Fixed
	repo  cookies.Repository

	newRepo func(s *RepositoryTestSuite) cookies.Repository
	// expire moves stored cookies past their lifetime
	expire func(s *RepositoryTestSuite)
}

func TestInMemoryRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(s *RepositoryTestSuite) cookies.Repository {
			return cookies.NewInMemory(&cookies.InMemoryConfig{Clock: s.clock, TTL: testTTL})
		},
		expire: func(s *RepositoryTestSuite) { s.clock.Advance(testTTL + time.Second) },
	})
}

func TestRedisRepository(t *testing.T) {
	var fastForward func(time.Duration)
	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(s *RepositoryTestSuite) cookies.Repository {
			client, mr := testutils.CreateTestRedisClient(s.T())
			fastForward = mr.FastForward
			repo, err := cookies.NewRedis(&cookies.RedisConfig{Client: client, Clock: s.clock, TTL: testTTL})
			s.Require().NoError(err)
			return repo
		},
		expire: func(s *RepositoryTestSuite) { fastForward(testTTL + time.Second) },
	})
}

func TestSQLiteRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(s *RepositoryTestSuite) cookies.Repository {
			repo, err := cookies.NewSQLite(&cookies.SQLiteConfig{
				Path:  filepath.Join(s.T().TempDir(), "tracker.db"),
				Clock: s.clock,
				TTL:   testTTL,
			})
			s.Require().NoError(err)
			s.T().Cleanup(func() { _ = repo.Close() })
			return repo
		},
		expire: func(s *RepositoryTestSuite) { s.clock.Advance(testTTL + time.Second) },
	})
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFixed(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	s.repo = s.newRepo(s)
}

func (s *RepositoryTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, cookies.GetInput{SessionID: "nobody"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestSaveAndGet() {
	out, err := s.repo.Save(s.ctx, cookies.SaveInput{SessionID: "table-1", Value: "%5B%5D"})
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(testTTL), out.ExpiresAt)

	got, err := s.repo.Get(s.ctx, cookies.GetInput{SessionID: "table-1"})
	s.Require().NoError(err)
	s.Equal("%5B%5D", got.Value)
	s.False(got.ExpiresAt.IsZero())
}

func (s *RepositoryTestSuite) TestSaveOverwrites() {
	_, err := s.repo.Save(s.ctx, cookies.SaveInput{SessionID: "table-1", Value: "first"})
	s.Require().NoError(err)
	_, err = s.repo.Save(s.ctx, cookies.SaveInput{SessionID: "table-1", Value: "second"})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, cookies.GetInput{SessionID: "table-1"})
	s.Require().NoError(err)
	s.Equal("second", got.Value)
}

func (s *RepositoryTestSuite) TestSessionsAreIsolated() {
	_, err := s.repo.Save(s.ctx, cookies.SaveInput{SessionID: "a", Value: "one"})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, cookies.GetInput{SessionID: "b"})
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestDelete() {
	_, err := s.repo.Save(s.ctx, cookies.SaveInput{SessionID: "table-1", Value: "v"})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, cookies.DeleteInput{SessionID: "table-1"})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, cookies.GetInput{SessionID: "table-1"})
	s.True(errors.IsNotFound(err))

	_, err = s.repo.Delete(s.ctx, cookies.DeleteInput{SessionID: "table-1"})
	s.NoError(err, "deleting twice succeeds")
}

func (s *RepositoryTestSuite) TestExpiry() {
	_, err := s.repo.Save(s.ctx, cookies.SaveInput{SessionID: "table-1", Value: "v"})
	s.Require().NoError(err)

	s.expire(s)

	_, err = s.repo.Get(s.ctx, cookies.GetInput{SessionID: "table-1"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestEmptySessionID() {
	_, err := s.repo.Get(s.ctx, cookies.GetInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Save(s.ctx, cookies.SaveInput{Value: "v"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Delete(s.ctx, cookies.DeleteInput{})
	s.True(errors.IsInvalidArgument(err))
}

func TestConstructorsValidateConfig(t *testing.T) {
	_, err := cookies.NewRedis(&cookies.RedisConfig{})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	_, err = cookies.NewRedis(nil)
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	_, err = cookies.NewSQLite(&cookies.SQLiteConfig{})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestRedisRepositoryReportsOutage(t *testing.T) {
	client, mr := testutils.CreateTestRedisClient(t)
	repo, err := cookies.NewRedis(&cookies.RedisConfig{Client: client})
	require.NoError(t, err)

	mr.Close()

	_, err = repo.Get(context.Background(), cookies.GetInput{SessionID: "s1"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))

	_, err = repo.Save(context.Background(), cookies.SaveInput{SessionID: "s1", Value: "x"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))
}

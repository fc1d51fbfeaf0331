//go:build integration

package profile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"coursegate/internal/profile"
	"coursegate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *profile.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = profile.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "profiles")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestEnsureCreates() {
	ctx := context.Background()

	p, err := s.store.Ensure(ctx, "subject-1", "Asha", "asha@example.com")
	s.Require().NoError(err)
	s.Equal("subject-1", p.SubjectID)
	s.Equal("Asha", p.DisplayName)
	s.Equal(profile.RoleLearner, p.Role)
	s.Equal(profile.StatusActive, p.Status)
}

func (s *PostgresStoreSuite) TestEnsureFirstWriteWins() {
	ctx := context.Background()

	_, err := s.store.Ensure(ctx, "subject-1", "Asha", "asha@example.com")
	s.Require().NoError(err)

	p, err := s.store.Ensure(ctx, "subject-1", "Someone Else", "other@example.com")
	s.Require().NoError(err)
	s.Equal("Asha", p.DisplayName)
	s.Equal("asha@example.com", p.Email)
}

func (s *PostgresStoreSuite) TestEnsureFillsMissingFields() {
	ctx := context.Background()

	_, err := s.store.Ensure(ctx, "subject-1", "", "")
	s.Require().NoError(err)

	p, err := s.store.Ensure(ctx, "subject-1", "Asha", "asha@example.com")
	s.Require().NoError(err)
	s.Equal("Asha", p.DisplayName)
	s.Equal("asha@example.com", p.Email)
}

// A new subject id presenting a known email adopts the existing profile
// instead of creating a duplicate.
func (s *PostgresStoreSuite) TestEnsureAdoptsByEmail() {
	ctx := context.Background()

	_, err := s.store.Ensure(ctx, "old-subject", "Asha", "asha@example.com")
	s.Require().NoError(err)

	p, err := s.store.Ensure(ctx, "new-subject", "", "asha@example.com")
	s.Require().NoError(err)
	s.Equal("new-subject", p.SubjectID)
	s.Equal("Asha", p.DisplayName)

	_, err = s.store.FindBySubject(ctx, "old-subject")
	s.Error(err)
}

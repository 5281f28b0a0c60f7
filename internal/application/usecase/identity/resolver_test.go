package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portfolio-api/internal/testutil"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type ResolverTestSuite struct {
	suite.Suite
	store *testutil.Store
	ctx   context.Context
}

func (s *ResolverTestSuite) SetupTest() {
	s.store = testutil.NewStore()
	s.ctx = context.Background()
}

func (s *ResolverTestSuite) TestAuthenticatedCallerResolvesToSelf() {
	owner, _ := s.store.SeedUser("owner")
	visitor, _ := s.store.SeedUser("visitor")
	r := NewResolver(s.store.Users(), owner.Username, logger.NewNop())

	got, err := r.Resolve(s.ctx, Account(visitor.ID))
	s.Require().NoError(err)
	s.Equal(visitor.ID, got.ID)
}

func (s *ResolverTestSuite) TestAnonymousCallerResolvesToOwner() {
	owner, _ := s.store.SeedUser("owner")
	r := NewResolver(s.store.Users(), "owner", logger.NewNop())

	got, err := r.Resolve(s.ctx, Anonymous())
	s.Require().NoError(err)
	s.Equal(owner.ID, got.ID)
}

func (s *ResolverTestSuite) TestMissingOwnerIsNotFound() {
	r := NewResolver(s.store.Users(), "owner", logger.NewNop())

	_, err := r.Resolve(s.ctx, Anonymous())
	s.ErrorIs(err, apperror.ErrNotFound)
	s.Equal(404, apperror.ToHTTPStatus(err))
}

func (s *ResolverTestSuite) TestUnconfiguredOwnerIsNotFound() {
	s.store.SeedUser("owner")
	r := NewResolver(s.store.Users(), "", logger.NewNop())

	_, err := r.Resolve(s.ctx, Anonymous())
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *ResolverTestSuite) TestDeletedCallerIsNotFound() {
	s.store.SeedUser("owner")
	r := NewResolver(s.store.Users(), "owner", logger.NewNop())

	_, err := r.Resolve(s.ctx, Account(uuid.New()))
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *ResolverTestSuite) TestOwnerSeededLaterIsPickedUp() {
	r := NewResolver(s.store.Users(), "owner", logger.NewNop())
	_, err := r.Resolve(s.ctx, Anonymous())
	s.Require().Error(err)

	owner, _ := s.store.SeedUser("owner")
	got, err := r.Resolve(s.ctx, Anonymous())
	s.Require().NoError(err)
	s.Equal(owner.ID, got.ID)
}

func (s *ResolverTestSuite) TestOwnerRenameKeepsResolving() {
	owner, _ := s.store.SeedUser("owner")
	r := NewResolver(s.store.Users(), "owner", logger.NewNop())
	_, err := r.Resolve(s.ctx, Anonymous())
	s.Require().NoError(err)

	owner.Username = "renamed"
	s.Require().NoError(s.store.Users().Update(s.ctx, owner))

	got, err := r.Resolve(s.ctx, Anonymous())
	s.Require().NoError(err)
	s.Equal("renamed", got.Username)
}

func TestResolverTestSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}

func TestZeroCallerIsAnonymous(t *testing.T) {
	var c Caller
	assert.False(t, c.Authenticated)
	require.Equal(t, Anonymous(), c)
}

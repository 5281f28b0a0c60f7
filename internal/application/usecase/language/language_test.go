package language

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portfolio-api/internal/application/usecase/collection"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/ownership"
	"github.com/khoahotran/portfolio-api/internal/domain/language"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/internal/testutil"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type LanguageTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *testutil.Store
	uc     *LanguageUseCase
	owner  *user.User
	ownerP *profile.Profile
	other  *user.User
	otherP *profile.Profile
}

func (s *LanguageTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore()
	log := logger.NewNop()

	resolver := identity.NewResolver(s.store.Users(), "owner", log)
	locator := collection.NewLocator(resolver, s.store.Profiles())
	guard := ownership.NewGuard(s.store.Profiles(), s.store.Links(), s.store.Skills(), log)
	s.uc = NewLanguageUseCase(locator, guard, s.store, s.store.Languages(), s.store.Links(), testutil.NewMemoryCache(), time.Minute, log)

	s.owner, s.ownerP = s.store.SeedUser("owner")
	s.other, s.otherP = s.store.SeedUser("other")
}

func (s *LanguageTestSuite) add(u *user.User, name, proficiency string) *language.Language {
	l, err := s.uc.Add(s.ctx, identity.Account(u.ID), collection.LanguageSpec{Name: name, Proficiency: proficiency})
	s.Require().NoError(err)
	return l
}

func (s *LanguageTestSuite) TestAddDedupsByNaturalKeyAndAppends() {
	en := s.add(s.owner, "English", "fluent")
	vi := s.add(s.owner, "Vietnamese", "native")
	again := s.add(s.owner, "English", "FLUENT")
	fr := s.add(s.owner, "French", "basic")

	s.Equal(en.ID, again.ID)
	s.Equal(3, s.store.LanguageCount())

	ids, err := s.store.Links().ListIDs(s.ctx, s.ownerP.ID, profile.CollectionLanguages)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{en.ID, vi.ID, fr.ID}, ids)
}

func (s *LanguageTestSuite) TestUnknownProficiencyIsRejected() {
	_, err := s.uc.Add(s.ctx, identity.Account(s.owner.ID), collection.LanguageSpec{Name: "English", Proficiency: "expert"})
	s.ErrorIs(err, apperror.ErrInvalidInput)
	s.Zero(s.store.LanguageCount())
}

func (s *LanguageTestSuite) TestUnlinkedLanguageIsForbidden() {
	l := s.add(s.owner, "English", "fluent")
	name := "Spanish"

	_, err := s.uc.Update(s.ctx, UpdateLanguageInput{Caller: identity.Account(s.other.ID), ID: l.ID, Name: &name})
	s.Equal(http.StatusForbidden, apperror.ToHTTPStatus(err))

	err = s.uc.Remove(s.ctx, identity.Account(s.other.ID), l.ID)
	s.Equal(http.StatusForbidden, apperror.ToHTTPStatus(err))
}

func (s *LanguageTestSuite) TestGetUnlinkedIsNotFound() {
	l := s.add(s.other, "German", "intermediate")

	_, err := s.uc.Get(s.ctx, identity.Anonymous(), l.ID)
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *LanguageTestSuite) TestUpdateOntoExistingNaturalKeyConflicts() {
	s.add(s.owner, "English", "fluent")
	l := s.add(s.owner, "English", "basic")

	proficiency := "fluent"
	_, err := s.uc.Update(s.ctx, UpdateLanguageInput{Caller: identity.Account(s.owner.ID), ID: l.ID, Proficiency: &proficiency})
	s.Equal(http.StatusConflict, apperror.ToHTTPStatus(err))
}

func (s *LanguageTestSuite) TestSharedLanguageUpdateShowsForEveryLinker() {
	l := s.add(s.owner, "English", "basic")
	s.add(s.other, "English", "basic")
	before, err := s.uc.List(s.ctx, identity.Anonymous())
	s.Require().NoError(err)
	s.Require().Len(before, 1)

	proficiency := "proficient"
	_, err = s.uc.Update(s.ctx, UpdateLanguageInput{Caller: identity.Account(s.other.ID), ID: l.ID, Proficiency: &proficiency})
	s.Require().NoError(err)

	after, err := s.uc.List(s.ctx, identity.Anonymous())
	s.Require().NoError(err)
	s.Require().Len(after, 1)
	s.Equal(language.Proficient, after[0].Proficiency)
}

func (s *LanguageTestSuite) TestRemoveKeepsSharedRow() {
	l := s.add(s.owner, "English", "fluent")
	s.add(s.other, "English", "fluent")

	s.Require().NoError(s.uc.Remove(s.ctx, identity.Account(s.owner.ID), l.ID))

	s.Equal(1, s.store.LanguageCount())
	linked, err := s.store.Links().Contains(s.ctx, s.otherP.ID, profile.CollectionLanguages, l.ID)
	s.Require().NoError(err)
	s.True(linked)
}

func TestLanguageTestSuite(t *testing.T) {
	suite.Run(t, new(LanguageTestSuite))
}

package collection

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/testutil"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type SynchronizerTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *testutil.Store
	cache  *testutil.MemoryCache
	events *testutil.EventRecorder
	sync   *Synchronizer
	owner  *profile.Profile
}

func (s *SynchronizerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore()
	s.cache = testutil.NewMemoryCache()
	s.events = &testutil.EventRecorder{}
	s.sync = NewSynchronizer(
		s.store,
		s.store.Links(),
		s.store.Certifications(),
		s.store.Languages(),
		s.store.Skills(),
		s.cache,
		s.events,
		logger.NewNop(),
	)
	_, s.owner = s.store.SeedUser("owner")
}

func (s *SynchronizerTestSuite) linked(c profile.Collection) int {
	ids, err := s.store.Links().ListIDs(s.ctx, s.owner.ID, c)
	s.Require().NoError(err)
	return len(ids)
}

func (s *SynchronizerTestSuite) TestCertificationsAreIdempotent() {
	specs := []CertificationSpec{
		{Title: "AWS SAA", Issuer: "Amazon", Date: "2024-01", Type: "aws"},
		{Title: "Software Engineering", Issuer: "ALX", Date: "2023", Type: "alx"},
	}

	res, err := s.sync.SyncCertifications(s.ctx, s.owner, specs)
	s.Require().NoError(err)
	s.Equal(Result{Created: 2}, *res)

	res, err = s.sync.SyncCertifications(s.ctx, s.owner, specs)
	s.Require().NoError(err)
	s.Equal(Result{Reused: 2}, *res)

	s.Equal(2, s.store.CertificationCount())
	s.Equal(2, s.linked(profile.CollectionCertifications))
}

func (s *SynchronizerTestSuite) TestDuplicateNaturalKeyKeepsLastFields() {
	res, err := s.sync.SyncCertifications(s.ctx, s.owner, []CertificationSpec{
		{Title: "CKA", Issuer: "CNCF", Date: "2022"},
		{Title: "CKA", Issuer: "CNCF", Date: "2024"},
	})
	s.Require().NoError(err)
	s.Equal(Result{Created: 1, Reused: 1}, *res)

	ids, err := s.store.Links().ListIDs(s.ctx, s.owner.ID, profile.CollectionCertifications)
	s.Require().NoError(err)
	s.Require().Len(ids, 1)

	c, err := s.store.Certifications().FindByID(s.ctx, ids[0])
	s.Require().NoError(err)
	s.Equal("2024", c.Date)
	s.Equal("other", string(c.Type))
}

func (s *SynchronizerTestSuite) TestEmptyListClearsCollection() {
	_, err := s.sync.SyncLanguages(s.ctx, s.owner, []LanguageSpec{{Name: "English", Proficiency: "Fluent"}})
	s.Require().NoError(err)
	s.Equal(1, s.linked(profile.CollectionLanguages))

	res, err := s.sync.SyncLanguages(s.ctx, s.owner, []LanguageSpec{})
	s.Require().NoError(err)
	s.Equal(Result{}, *res)
	s.Equal(0, s.linked(profile.CollectionLanguages))
	s.Equal(1, s.store.LanguageCount(), "unlinked rows are kept")
}

func (s *SynchronizerTestSuite) TestLanguageProficiencyIsCaseInsensitive() {
	_, err := s.sync.SyncLanguages(s.ctx, s.owner, []LanguageSpec{
		{Name: "English", Proficiency: "Fluent"},
		{Name: "English", Proficiency: "fluent"},
	})
	s.Require().NoError(err)
	s.Equal(1, s.store.LanguageCount())
	s.Equal(1, s.linked(profile.CollectionLanguages))
}

func (s *SynchronizerTestSuite) TestValidationReportsEveryViolationAndWritesNothing() {
	_, err := s.sync.SyncCertifications(s.ctx, s.owner, []CertificationSpec{
		{Title: "ok", Issuer: "ok", Date: "2024"},
		{Title: "", Issuer: "x", Date: "2024"},
		{Title: "t", Issuer: "", Date: "2024", Type: "gcp"},
	})
	s.Require().Error(err)
	s.ErrorIs(err, apperror.ErrInvalidInput)

	var appErr *apperror.AppError
	s.Require().True(errors.As(err, &appErr))
	s.ElementsMatch([]string{
		"[1].title: is required",
		"[2].issuer: is required",
		"[2].type: must be one of [aws alx other]",
	}, appErr.Violations)

	s.Equal(0, s.store.CertificationCount())
	s.Empty(s.events.Events())
}

func (s *SynchronizerTestSuite) TestUnknownProficiencyIsViolation() {
	_, err := s.sync.SyncLanguages(s.ctx, s.owner, []LanguageSpec{{Name: "Klingon", Proficiency: "Expert"}})
	var appErr *apperror.AppError
	s.Require().True(errors.As(err, &appErr))
	s.Equal([]string{"[0].proficiency: must be one of [Native Fluent Proficient Intermediate Basic]"}, appErr.Violations)
}

func (s *SynchronizerTestSuite) TestSkillCategoriesUpsertNestedSkills() {
	specs := []SkillCategorySpec{
		{Category: "Backend", Skills: []SkillSpec{{Name: "Go", Level: 80}, {Name: "SQL", Level: 70}}},
		{Category: "Frontend", Skills: []SkillSpec{{Name: "React", Level: 60}}},
	}
	res, err := s.sync.SyncSkillCategories(s.ctx, s.owner, specs)
	s.Require().NoError(err)
	s.Equal(Result{Created: 2}, *res)

	specs[0].Skills[0].Level = 95
	res, err = s.sync.SyncSkillCategories(s.ctx, s.owner, specs)
	s.Require().NoError(err)
	s.Equal(Result{Reused: 2}, *res)

	s.Equal(2, s.store.CategoryCount())
	s.Equal(3, s.store.SkillCount())

	ids, err := s.store.Links().ListIDs(s.ctx, s.owner.ID, profile.CollectionSkillCategories)
	s.Require().NoError(err)
	cats, err := s.store.Skills().ListCategoriesByIDs(s.ctx, ids)
	s.Require().NoError(err)
	s.Require().Len(cats, 2)
	s.Equal("Backend", cats[0].Name)
	s.Equal("Go", cats[0].Skills[0].Name)
	s.Equal(95, cats[0].Skills[0].Level)
}

func (s *SynchronizerTestSuite) TestNestedSkillViolationPath() {
	_, err := s.sync.SyncSkillCategories(s.ctx, s.owner, []SkillCategorySpec{
		{Category: "Backend", Skills: []SkillSpec{{Name: "Go", Level: 101}}},
	})
	var appErr *apperror.AppError
	s.Require().True(errors.As(err, &appErr))
	s.Equal([]string{"[0].skills[0].level: must be at most 100"}, appErr.Violations)
}

func (s *SynchronizerTestSuite) TestFailureRollsBackEverything() {
	_, err := s.sync.SyncCertifications(s.ctx, s.owner, []CertificationSpec{{Title: "A", Issuer: "B", Date: "2020"}})
	s.Require().NoError(err)

	s.store.ReplaceErr = apperror.NewInternal("link table unavailable", nil)
	_, err = s.sync.SyncCertifications(s.ctx, s.owner, []CertificationSpec{
		{Title: "A", Issuer: "B", Date: "2021"},
		{Title: "C", Issuer: "D", Date: "2021"},
	})
	s.Require().ErrorIs(err, apperror.ErrInternal)

	s.Equal(1, s.store.CertificationCount())
	ids, err := s.store.Links().ListIDs(s.ctx, s.owner.ID, profile.CollectionCertifications)
	s.Require().NoError(err)
	s.Require().Len(ids, 1)
	c, err := s.store.Certifications().FindByID(s.ctx, ids[0])
	s.Require().NoError(err)
	s.Equal("2020", c.Date)
}

func (s *SynchronizerTestSuite) TestSyncDropsCacheAndPublishes() {
	key := service.PublicCacheKey(s.owner.AccountID, "certifications")
	s.Require().NoError(s.cache.SetJSON(s.ctx, key, []string{"stale"}, time.Minute))

	_, err := s.sync.SyncCertifications(s.ctx, s.owner, []CertificationSpec{{Title: "A", Issuer: "B", Date: "2020"}})
	s.Require().NoError(err)

	s.False(s.cache.Has(key))
	s.Eventually(func() bool { return len(s.events.Events()) == 1 }, time.Second, 10*time.Millisecond)
	evt := s.events.Events()[0]
	s.Equal(service.EventCollectionSynced, evt.EventType)
	s.Equal(string(profile.CollectionCertifications), evt.Collection)
	s.Equal(1, evt.Created)
}

func (s *SynchronizerTestSuite) TestSyncDropsCacheOfEveryAccountSharingRows() {
	_, err := s.sync.SyncCertifications(s.ctx, s.owner, []CertificationSpec{{Title: "X", Issuer: "Y", Date: "2023"}})
	s.Require().NoError(err)
	ownerKey := service.PublicCacheKey(s.owner.AccountID, "certifications")
	s.Require().NoError(s.cache.SetJSON(s.ctx, ownerKey, []string{"2023"}, time.Minute))

	_, other := s.store.SeedUser("other")
	_, err = s.sync.SyncCertifications(s.ctx, other, []CertificationSpec{{Title: "X", Issuer: "Y", Date: "2025"}})
	s.Require().NoError(err)

	s.False(s.cache.Has(ownerKey))
	s.Contains(s.cache.Deleted, service.PublicCacheKey(other.AccountID, "certifications"))
}

func (s *SynchronizerTestSuite) TestSyncLeavesUnrelatedAccountsCached() {
	_, other := s.store.SeedUser("other")
	otherKey := service.PublicCacheKey(other.AccountID, "languages")
	s.Require().NoError(s.cache.SetJSON(s.ctx, otherKey, []string{"cached"}, time.Minute))

	_, err := s.sync.SyncLanguages(s.ctx, s.owner, []LanguageSpec{{Name: "English", Proficiency: "fluent"}})
	s.Require().NoError(err)

	s.True(s.cache.Has(otherKey))
}

func TestSynchronizerTestSuite(t *testing.T) {
	suite.Run(t, new(SynchronizerTestSuite))
}

func TestCertificationSpecAcceptsBothInProgressSpellings(t *testing.T) {
	var specs []CertificationSpec
	require.NoError(t, json.Unmarshal([]byte(`[
		{"title":"a","issuer":"b","date":"2024","in_progress":true},
		{"title":"c","issuer":"d","date":"2024","inProgress":true},
		{"title":"e","issuer":"f","date":"2024"}
	]`), &specs))

	assert.True(t, specs[0].InProgress)
	assert.True(t, specs[1].InProgress)
	assert.False(t, specs[2].InProgress)
	assert.Equal(t, "a", specs[0].Title)
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, []uuid.UUID{a, b}, Dedupe([]uuid.UUID{a, b, a}))
}

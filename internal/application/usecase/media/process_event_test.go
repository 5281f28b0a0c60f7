package media

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/internal/testutil"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type ProcessEventTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *testutil.Store
	cache *testutil.MemoryCache
	uc    *ProcessEventUseCase

	owner        *user.User
	ownerProfile *profile.Profile
}

func TestProcessEvent(t *testing.T) {
	suite.Run(t, new(ProcessEventTestSuite))
}

func (s *ProcessEventTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore()
	s.cache = testutil.NewMemoryCache()
	s.uc = NewProcessEventUseCase(s.store.Profiles(), s.store.Projects(), testutil.NewFakeUploader(), s.cache, logger.NewNop())
	s.owner, s.ownerProfile = s.store.SeedUser("owner")
}

func (s *ProcessEventTestSuite) TestProfileThumbnailDerived() {
	s.ownerProfile.SetImage("https://cdn.test/profiles/me", "profiles/me")
	s.Require().NoError(s.store.Profiles().Update(s.ctx, s.ownerProfile))
	key := service.PublicCacheKey(s.owner.ID, "profile")
	s.Require().NoError(s.cache.SetJSON(s.ctx, key, "stale", time.Minute))

	err := s.uc.Execute(s.ctx, service.PortfolioEvent{
		EventType: service.EventProfileImageUploaded,
		AccountID: s.owner.ID,
		PublicID:  "profiles/me",
	})
	s.Require().NoError(err)

	p, err := s.store.Profiles().FindByAccountID(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Require().NotNil(p.ImageThumbnailURL)
	s.Equal("https://cdn.test/"+thumbnailTransformation+"/profiles/me", *p.ImageThumbnailURL)
	s.False(s.cache.Has(key))
}

func (s *ProcessEventTestSuite) TestReplacedProfileImageIsSkipped() {
	s.ownerProfile.SetImage("https://cdn.test/profiles/new", "profiles/new")
	s.Require().NoError(s.store.Profiles().Update(s.ctx, s.ownerProfile))

	err := s.uc.Execute(s.ctx, service.PortfolioEvent{
		EventType: service.EventProfileImageUploaded,
		AccountID: s.owner.ID,
		PublicID:  "profiles/old",
	})
	s.Require().NoError(err)

	p, err := s.store.Profiles().FindByAccountID(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Nil(p.ImageThumbnailURL)
}

func (s *ProcessEventTestSuite) TestProjectImageProcessed() {
	prj := &project.Project{
		ID:        uuid.New(),
		OwnerID:   s.owner.ID,
		Name:      "Site",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	prj.SetImage("https://cdn.test/projects/site", "projects/site")
	s.Require().NoError(s.store.Projects().Save(s.ctx, prj))

	err := s.uc.Execute(s.ctx, service.PortfolioEvent{
		EventType:  service.EventProjectImageUploaded,
		AccountID:  s.owner.ID,
		ResourceID: prj.ID,
		PublicID:   "projects/site",
	})
	s.Require().NoError(err)

	got, err := s.store.Projects().FindByID(s.ctx, prj.ID)
	s.Require().NoError(err)
	s.Equal("https://cdn.test/"+mainTransformation+"/projects/site", *got.ImageURL)
	s.Equal("https://cdn.test/"+thumbnailTransformation+"/projects/site", *got.ThumbnailURL)
}

func (s *ProcessEventTestSuite) TestMissingTargetsAndUnknownEventsAreSkipped() {
	s.NoError(s.uc.Execute(s.ctx, service.PortfolioEvent{
		EventType:  service.EventProjectImageUploaded,
		AccountID:  s.owner.ID,
		ResourceID: uuid.New(),
		PublicID:   "projects/gone",
	}))
	s.NoError(s.uc.Execute(s.ctx, service.PortfolioEvent{
		EventType: service.EventProfileImageUploaded,
		AccountID: uuid.New(),
		PublicID:  "profiles/gone",
	}))
	s.NoError(s.uc.Execute(s.ctx, service.PortfolioEvent{EventType: "post.created", AccountID: s.owner.ID}))
}

func (s *ProcessEventTestSuite) TestCollectionSyncedDropsCache() {
	key := service.PublicCacheKey(s.owner.ID, "certifications")
	s.Require().NoError(s.cache.SetJSON(s.ctx, key, []string{"stale"}, time.Minute))

	s.Require().NoError(s.uc.Execute(s.ctx, service.PortfolioEvent{
		EventType:  service.EventCollectionSynced,
		AccountID:  s.owner.ID,
		Collection: "certifications",
	}))
	s.False(s.cache.Has(key))
}

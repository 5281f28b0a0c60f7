package profile

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/collection"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/media"
	"github.com/khoahotran/portfolio-api/internal/domain/certification"
	"github.com/khoahotran/portfolio-api/internal/domain/language"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/internal/testutil"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type ProfileTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *testutil.Store
	cache    *testutil.MemoryCache
	uploader *testutil.FakeUploader
	events   *testutil.EventRecorder
	uc       *ProfileUseCase
	owner    *user.User
	ownerP   *profile.Profile
}

func (s *ProfileTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore()
	s.cache = testutil.NewMemoryCache()
	s.uploader = testutil.NewFakeUploader()
	s.events = &testutil.EventRecorder{}
	log := logger.NewNop()

	resolver := identity.NewResolver(s.store.Users(), "owner", log)
	locator := collection.NewLocator(resolver, s.store.Profiles())
	repos := Repositories{
		Users:          s.store.Users(),
		Profiles:       s.store.Profiles(),
		Links:          s.store.Links(),
		Skills:         s.store.Skills(),
		Certifications: s.store.Certifications(),
		Languages:      s.store.Languages(),
	}
	images := media.NewImageStore(s.uploader, s.events, log)
	s.uc = NewProfileUseCase(locator, repos, s.store, images, s.cache, time.Minute, log)

	s.owner, s.ownerP = s.store.SeedUser("owner")
}

func (s *ProfileTestSuite) cert(title string) *certification.Certification {
	c := &certification.Certification{Title: title, Issuer: "CNCF", Date: "2024", Type: certification.TypeOther}
	_, err := s.store.Certifications().Upsert(s.ctx, c)
	s.Require().NoError(err)
	return c
}

func (s *ProfileTestSuite) TestAnonymousGetShowsOwnerCollectionsInOrder() {
	a, b := s.cert("CKA"), s.cert("CKAD")
	s.Require().NoError(s.store.Links().ReplaceAll(s.ctx, s.ownerP.ID, profile.CollectionCertifications, []uuid.UUID{b.ID, a.ID}))

	v, err := s.uc.Get(s.ctx, identity.Anonymous())
	s.Require().NoError(err)
	s.Equal(s.owner.ID, v.User.ID)
	s.Require().Len(v.Certifications, 2)
	s.Equal("CKAD", v.Certifications[0].Title)
	s.Equal("CKA", v.Certifications[1].Title)
	s.Empty(v.Languages)
	s.True(s.cache.Has(service.PublicCacheKey(s.owner.ID, "profile")))
}

func (s *ProfileTestSuite) TestGetWithoutProfileIsNotFound() {
	u := s.store.SeedUserWithoutProfile("drifter")

	_, err := s.uc.Get(s.ctx, identity.Account(u.ID))
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *ProfileTestSuite) TestAnonymousUpdateIsUnauthorized() {
	bio := "hi"
	_, err := s.uc.Update(s.ctx, UpdateProfileInput{Caller: identity.Anonymous(), Bio: &bio})
	s.Equal(http.StatusUnauthorized, apperror.ToHTTPStatus(err))
}

func (s *ProfileTestSuite) TestUpdateReplacesLinksAndDropsCache() {
	_, err := s.uc.Get(s.ctx, identity.Anonymous())
	s.Require().NoError(err)

	a := s.cert("CKA")
	l := &language.Language{Name: "English", Proficiency: language.Fluent}
	_, err = s.store.Languages().Upsert(s.ctx, l)
	s.Require().NoError(err)

	bio := "Backend engineer"
	certs := []uuid.UUID{a.ID, a.ID}
	langs := []uuid.UUID{l.ID}
	v, err := s.uc.Update(s.ctx, UpdateProfileInput{
		Caller:           identity.Account(s.owner.ID),
		Bio:              &bio,
		CertificationIDs: &certs,
		LanguageIDs:      &langs,
	})
	s.Require().NoError(err)
	s.Equal("Backend engineer", v.Profile.Bio)
	s.Len(v.Certifications, 1)
	s.Len(v.Languages, 1)
	s.False(s.cache.Has(service.PublicCacheKey(s.owner.ID, "profile")))
}

func (s *ProfileTestSuite) TestUpdateWithUnknownIDRollsBack() {
	bio := "changed"
	missing := []uuid.UUID{uuid.New()}

	_, err := s.uc.Update(s.ctx, UpdateProfileInput{Caller: identity.Account(s.owner.ID), Bio: &bio, CertificationIDs: &missing})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	p, err := s.store.Profiles().FindByAccountID(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Empty(p.Bio)
}

func (s *ProfileTestSuite) TestUsernameRules() {
	s.store.SeedUser("taken")

	blank := "  "
	_, err := s.uc.Update(s.ctx, UpdateProfileInput{Caller: identity.Account(s.owner.ID), Username: &blank})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	taken := "taken"
	_, err = s.uc.Update(s.ctx, UpdateProfileInput{Caller: identity.Account(s.owner.ID), Username: &taken})
	s.Equal(http.StatusConflict, apperror.ToHTTPStatus(err))
}

func (s *ProfileTestSuite) TestUploadImageReplacesPrevious() {
	file := func() media.ImageFile {
		return media.ImageFile{Reader: bytes.NewReader([]byte("png")), Size: 3, ContentType: "image/png"}
	}

	_, err := s.uc.UploadImage(s.ctx, identity.Account(s.owner.ID), file())
	s.Require().NoError(err)
	second, err := s.uc.UploadImage(s.ctx, identity.Account(s.owner.ID), file())
	s.Require().NoError(err)

	p, err := s.store.Profiles().FindByAccountID(s.ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(second, *p.ImageURL)
	s.Eventually(func() bool { return len(s.uploader.DeletedIDs()) == 1 }, time.Second, 10*time.Millisecond)
	s.Eventually(func() bool { return len(s.events.Events()) == 2 }, time.Second, 10*time.Millisecond)
	s.Equal(service.EventProfileImageUploaded, s.events.Events()[0].EventType)
}

func (s *ProfileTestSuite) TestUploadRejectsNonImage() {
	_, err := s.uc.UploadImage(s.ctx, identity.Account(s.owner.ID), media.ImageFile{Reader: bytes.NewReader(nil), ContentType: "text/plain"})
	s.ErrorIs(err, apperror.ErrInvalidInput)
	s.Empty(s.uploader.Uploads)
}

func (s *ProfileTestSuite) TestDeleteRemovesProfileAndImage() {
	_, err := s.uc.UploadImage(s.ctx, identity.Account(s.owner.ID), media.ImageFile{Reader: bytes.NewReader([]byte("x")), Size: 1, ContentType: "image/jpeg"})
	s.Require().NoError(err)

	s.Require().NoError(s.uc.Delete(s.ctx, identity.Account(s.owner.ID)))

	_, err = s.store.Profiles().FindByAccountID(s.ctx, s.owner.ID)
	s.ErrorIs(err, apperror.ErrNotFound)
	s.Eventually(func() bool { return len(s.uploader.DeletedIDs()) == 1 }, time.Second, 10*time.Millisecond)

	err = s.uc.Delete(s.ctx, identity.Account(s.owner.ID))
	s.ErrorIs(err, apperror.ErrNotFound)
}

func TestProfileTestSuite(t *testing.T) {
	suite.Run(t, new(ProfileTestSuite))
}

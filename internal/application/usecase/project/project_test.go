package project

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/media"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/ownership"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/internal/testutil"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type ProjectTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *testutil.Store
	uploader *testutil.FakeUploader
	events   *testutil.EventRecorder

	create *CreateProjectUseCase
	get    *GetProjectUseCase
	list   *ListProjectsUseCase
	update *UpdateProjectUseCase
	remove *DeleteProjectUseCase
	upload *UploadProjectImageUseCase

	owner *user.User
	other *user.User
}

func (s *ProjectTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore()
	s.uploader = testutil.NewFakeUploader()
	s.events = &testutil.EventRecorder{}
	log := logger.NewNop()

	repo := s.store.Projects()
	resolver := identity.NewResolver(s.store.Users(), "owner", log)
	guard := ownership.NewGuard(s.store.Profiles(), s.store.Links(), s.store.Skills(), log)
	images := media.NewImageStore(s.uploader, s.events, log)

	s.create = NewCreateProjectUseCase(repo, log)
	s.get = NewGetProjectUseCase(resolver, repo)
	s.list = NewListProjectsUseCase(resolver, repo, log)
	s.update = NewUpdateProjectUseCase(repo, guard)
	s.remove = NewDeleteProjectUseCase(repo, guard, images)
	s.upload = NewUploadProjectImageUseCase(repo, guard, images)

	s.owner, _ = s.store.SeedUser("owner")
	s.other, _ = s.store.SeedUser("other")
}

func (s *ProjectTestSuite) newProject(owner uuid.UUID, name string) *project.Project {
	p, err := s.create.Execute(s.ctx, CreateProjectInput{
		OwnerID:      owner,
		Name:         name,
		Description:  "A project",
		Status:       "active",
		Completion:   "80%",
		Technologies: "Go, Postgres",
		Type:         "backend",
	})
	s.Require().NoError(err)
	return p
}

func (s *ProjectTestSuite) TestCreateReportsEveryViolation() {
	link := "not a url"
	_, err := s.create.Execute(s.ctx, CreateProjectInput{OwnerID: s.owner.ID, Name: "  ", Link: &link})
	s.Require().Error(err)

	var appErr *apperror.AppError
	s.Require().ErrorAs(err, &appErr)
	s.GreaterOrEqual(len(appErr.Violations), 6)
}

func (s *ProjectTestSuite) TestAnonymousReadsOnlyOwnerProjects() {
	mine := s.newProject(s.owner.ID, "Portfolio API")
	theirs := s.newProject(s.other.ID, "Side project")

	got, err := s.get.Execute(s.ctx, GetProjectInput{Caller: identity.Anonymous(), ProjectID: mine.ID})
	s.Require().NoError(err)
	s.Equal("Portfolio API", got.Name)

	_, err = s.get.Execute(s.ctx, GetProjectInput{Caller: identity.Anonymous(), ProjectID: theirs.ID})
	s.ErrorIs(err, apperror.ErrNotFound)

	_, err = s.get.Execute(s.ctx, GetProjectInput{Caller: identity.Account(s.other.ID), ProjectID: theirs.ID})
	s.NoError(err)
}

func (s *ProjectTestSuite) TestListPaginatesNewestFirst() {
	for _, name := range []string{"one", "two", "three"} {
		s.newProject(s.owner.ID, name)
		time.Sleep(2 * time.Millisecond)
	}

	page, err := s.list.Execute(s.ctx, ListProjectsInput{Caller: identity.Anonymous(), Page: 1, Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("three", page[0].Name)

	page, err = s.list.Execute(s.ctx, ListProjectsInput{Caller: identity.Anonymous(), Page: 2, Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("one", page[0].Name)

	page, err = s.list.Execute(s.ctx, ListProjectsInput{Caller: identity.Anonymous(), Limit: 500})
	s.Require().NoError(err)
	s.Len(page, 3)
}

func (s *ProjectTestSuite) TestOnlyOwnerMayChangeProject() {
	p := s.newProject(s.owner.ID, "Portfolio API")
	name := "Hijacked"

	_, err := s.update.Execute(s.ctx, UpdateProjectInput{Caller: identity.Account(s.other.ID), ProjectID: p.ID, Name: &name})
	s.Equal(http.StatusForbidden, apperror.ToHTTPStatus(err))

	err = s.remove.Execute(s.ctx, DeleteProjectInput{Caller: identity.Account(s.other.ID), ProjectID: p.ID})
	s.Equal(http.StatusForbidden, apperror.ToHTTPStatus(err))

	_, err = s.update.Execute(s.ctx, UpdateProjectInput{Caller: identity.Anonymous(), ProjectID: p.ID, Name: &name})
	s.Equal(http.StatusUnauthorized, apperror.ToHTTPStatus(err))

	got, err := s.store.Projects().FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Portfolio API", got.Name)
}

func (s *ProjectTestSuite) TestUpdateClearsLinkWithEmptyString() {
	link := "https://example.com"
	p, err := s.create.Execute(s.ctx, CreateProjectInput{
		OwnerID: s.owner.ID, Name: "Site", Description: "d", Link: &link,
		Status: "done", Completion: "100%", Technologies: "Go", Type: "web",
	})
	s.Require().NoError(err)

	empty := ""
	updated, err := s.update.Execute(s.ctx, UpdateProjectInput{Caller: identity.Account(s.owner.ID), ProjectID: p.ID, Link: &empty})
	s.Require().NoError(err)
	s.Nil(updated.Link)
	s.Equal("Site", updated.Name)
}

func (s *ProjectTestSuite) TestUploadImageAnnouncesAndDeleteDiscards() {
	p := s.newProject(s.owner.ID, "Portfolio API")
	file := media.ImageFile{Reader: bytes.NewReader([]byte("img")), Size: 3, ContentType: "image/webp"}

	_, err := s.upload.Execute(s.ctx, UploadProjectImageInput{Caller: identity.Account(s.other.ID), ProjectID: p.ID, File: file})
	s.Equal(http.StatusForbidden, apperror.ToHTTPStatus(err))

	got, err := s.upload.Execute(s.ctx, UploadProjectImageInput{Caller: identity.Account(s.owner.ID), ProjectID: p.ID, File: file})
	s.Require().NoError(err)
	s.Require().NotNil(got.ImageURL)
	s.Nil(got.ThumbnailURL)
	s.Eventually(func() bool { return len(s.events.Events()) == 1 }, time.Second, 10*time.Millisecond)
	s.Equal(service.EventProjectImageUploaded, s.events.Events()[0].EventType)

	s.Require().NoError(s.remove.Execute(s.ctx, DeleteProjectInput{Caller: identity.Account(s.owner.ID), ProjectID: p.ID}))
	_, err = s.store.Projects().FindByID(s.ctx, p.ID)
	s.ErrorIs(err, apperror.ErrNotFound)
	s.Eventually(func() bool { return len(s.uploader.DeletedIDs()) == 1 }, time.Second, 10*time.Millisecond)
}

func TestProjectTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectTestSuite))
}

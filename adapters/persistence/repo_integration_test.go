package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khoahotran/portfolio-api/internal/application/usecase/collection"
	"github.com/khoahotran/portfolio-api/internal/domain/certification"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/internal/testutil"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type RepoIntegrationTestSuite struct {
	suite.Suite
	dbPool      *pgxpool.Pool
	pgContainer *postgres.PostgresContainer
	testLogger  logger.Logger

	userRepo    user.Repository
	profileRepo profile.Repository
	linkRepo    profile.LinkRepository
	certRepo    certification.Repository
	projectRepo project.Repository
	tx          *TxManager
	sync        *collection.Synchronizer

	owner        *user.User
	ownerProfile *profile.Profile
}

func (s *RepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	s.testLogger = logger.NewNop()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	s.userRepo = NewPostgresUserRepo(pool, s.testLogger)
	s.profileRepo = NewPostgresProfileRepo(pool, s.testLogger)
	s.linkRepo = NewPostgresLinkRepo(pool, s.testLogger)
	s.certRepo = NewPostgresCertificationRepo(pool, s.testLogger)
	s.projectRepo = NewPostgresProjectRepo(pool, s.testLogger)
	s.tx = NewTxManager(pool, s.testLogger)
	s.sync = collection.NewSynchronizer(
		s.tx,
		s.linkRepo,
		s.certRepo,
		NewPostgresLanguageRepo(pool, s.testLogger),
		NewPostgresSkillRepo(pool, s.testLogger),
		NewNoopCache(),
		&testutil.EventRecorder{},
		s.testLogger,
	)

	s.owner = &user.User{
		ID:           uuid.New(),
		Username:     "owner",
		Email:        "owner@example.com",
		PasswordHash: "hashedpassword",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, s.owner); err != nil {
		s.T().Fatalf("Failed to seed owner: %s", err)
	}
	s.ownerProfile, err = s.profileRepo.GetOrCreate(ctx, s.owner.ID)
	if err != nil {
		s.T().Fatalf("Failed to seed owner profile: %s", err)
	}
}

func (s *RepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func (s *RepoIntegrationTestSuite) SetupTest() {
	_, err := s.dbPool.Exec(context.Background(), `
		TRUNCATE profile_certifications, profile_languages, profile_skill_categories,
			certifications, languages, skills, skill_categories, projects
	`)
	s.Require().NoError(err)
}

func TestRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(RepoIntegrationTestSuite))
}

func (s *RepoIntegrationTestSuite) Test_GetOrCreate_IsStable() {
	ctx := context.Background()

	again, err := s.profileRepo.GetOrCreate(ctx, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(s.ownerProfile.ID, again.ID)
}

func (s *RepoIntegrationTestSuite) Test_UserEmailIsCaseInsensitive() {
	ctx := context.Background()

	found, err := s.userRepo.FindByEmail(ctx, "OWNER@example.com")
	s.Require().NoError(err)
	s.Equal(s.owner.ID, found.ID)

	dup := &user.User{ID: uuid.New(), Username: "other", Email: "Owner@Example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	err = s.userRepo.Create(ctx, dup)
	s.Require().Error(err)
	s.True(errors.Is(err, apperror.ErrConflict))
}

func (s *RepoIntegrationTestSuite) Test_SyncCertifications_UpsertsAndOrders() {
	ctx := context.Background()
	specs := []collection.CertificationSpec{
		{Title: "CKA", Issuer: "CNCF", Date: "2022"},
		{Title: "AWS SAA", Issuer: "Amazon", Date: "2024-01", Type: "aws"},
	}

	res, err := s.sync.SyncCertifications(ctx, s.ownerProfile, specs)
	s.Require().NoError(err)
	s.Equal(collection.Result{Created: 2}, *res)

	specs[0].Date = "2023"
	res, err = s.sync.SyncCertifications(ctx, s.ownerProfile, specs)
	s.Require().NoError(err)
	s.Equal(collection.Result{Reused: 2}, *res)

	ids, err := s.linkRepo.ListIDs(ctx, s.ownerProfile.ID, profile.CollectionCertifications)
	s.Require().NoError(err)
	s.Require().Len(ids, 2)

	certs, err := s.certRepo.ListByIDs(ctx, ids)
	s.Require().NoError(err)
	s.Require().Len(certs, 2)
	s.Equal("CKA", certs[0].Title)
	s.Equal("2023", certs[0].Date)
	s.Equal(certification.TypeOther, certs[0].Type)
	s.Equal(certification.TypeAWS, certs[1].Type)
	s.Require().NotNil(certs[0].CreatedBy)
	s.Equal(s.owner.ID, *certs[0].CreatedBy)
}

func (s *RepoIntegrationTestSuite) Test_SyncSkillCategories_NestsSkills() {
	ctx := context.Background()

	_, err := s.sync.SyncSkillCategories(ctx, s.ownerProfile, []collection.SkillCategorySpec{
		{Category: "Backend", Skills: []collection.SkillSpec{{Name: "Go", Level: 90}, {Name: "SQL", Level: 70}}},
		{Category: "Frontend", Skills: []collection.SkillSpec{{Name: "React", Level: 60}}},
	})
	s.Require().NoError(err)

	ids, err := s.linkRepo.ListIDs(ctx, s.ownerProfile.ID, profile.CollectionSkillCategories)
	s.Require().NoError(err)

	cats, err := NewPostgresSkillRepo(s.dbPool, s.testLogger).ListCategoriesByIDs(ctx, ids)
	s.Require().NoError(err)
	s.Require().Len(cats, 2)
	s.Equal("Backend", cats[0].Name)
	s.Len(cats[0].Skills, 2)
	s.Equal("Frontend", cats[1].Name)
	s.Equal(60, cats[1].Skills[0].Level)
}

func (s *RepoIntegrationTestSuite) Test_EmptySyncClearsLinksButKeepsRows() {
	ctx := context.Background()

	_, err := s.sync.SyncLanguages(ctx, s.ownerProfile, []collection.LanguageSpec{{Name: "English", Proficiency: "Fluent"}})
	s.Require().NoError(err)

	_, err = s.sync.SyncLanguages(ctx, s.ownerProfile, []collection.LanguageSpec{})
	s.Require().NoError(err)

	ids, err := s.linkRepo.ListIDs(ctx, s.ownerProfile.ID, profile.CollectionLanguages)
	s.Require().NoError(err)
	s.Empty(ids)

	var rows int
	s.Require().NoError(s.dbPool.QueryRow(ctx, `SELECT COUNT(*) FROM languages`).Scan(&rows))
	s.Equal(1, rows)
}

func (s *RepoIntegrationTestSuite) Test_WithinTx_RollsBackOnError() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c := &certification.Certification{Title: "Ghost", Issuer: "Nobody", Date: "2020", Type: certification.TypeOther}
		if _, err := s.certRepo.Upsert(ctx, c); err != nil {
			return err
		}
		if err := s.linkRepo.Link(ctx, s.ownerProfile.ID, profile.CollectionCertifications, c.ID); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	ids, err := s.linkRepo.ListIDs(ctx, s.ownerProfile.ID, profile.CollectionCertifications)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *RepoIntegrationTestSuite) Test_LinkAppendsAndUnlinkReports() {
	ctx := context.Background()

	a := &certification.Certification{Title: "A", Issuer: "X", Date: "2020", Type: certification.TypeOther}
	b := &certification.Certification{Title: "B", Issuer: "X", Date: "2021", Type: certification.TypeOther}
	for _, c := range []*certification.Certification{a, b} {
		_, err := s.certRepo.Upsert(ctx, c)
		s.Require().NoError(err)
		s.Require().NoError(s.linkRepo.Link(ctx, s.ownerProfile.ID, profile.CollectionCertifications, c.ID))
	}
	s.Require().NoError(s.linkRepo.Link(ctx, s.ownerProfile.ID, profile.CollectionCertifications, a.ID))

	ids, err := s.linkRepo.ListIDs(ctx, s.ownerProfile.ID, profile.CollectionCertifications)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{a.ID, b.ID}, ids)

	removed, err := s.linkRepo.Unlink(ctx, s.ownerProfile.ID, profile.CollectionCertifications, a.ID)
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.linkRepo.Unlink(ctx, s.ownerProfile.ID, profile.CollectionCertifications, a.ID)
	s.Require().NoError(err)
	s.False(removed)

	ok, err := s.linkRepo.Contains(ctx, s.ownerProfile.ID, profile.CollectionCertifications, b.ID)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RepoIntegrationTestSuite) Test_AccountsLinking_FindsEverySharer() {
	ctx := context.Background()

	name := "sharer-" + uuid.NewString()[:8]
	other := &user.User{ID: uuid.New(), Username: name, Email: name + "@example.com", PasswordHash: "x", CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.userRepo.Create(ctx, other))
	otherProfile, err := s.profileRepo.GetOrCreate(ctx, other.ID)
	s.Require().NoError(err)

	shared := &certification.Certification{Title: "Shared", Issuer: "X", Date: "2020", Type: certification.TypeOther}
	solo := &certification.Certification{Title: "Solo", Issuer: "X", Date: "2020", Type: certification.TypeOther}
	for _, c := range []*certification.Certification{shared, solo} {
		_, err := s.certRepo.Upsert(ctx, c)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.linkRepo.Link(ctx, s.ownerProfile.ID, profile.CollectionCertifications, shared.ID))
	s.Require().NoError(s.linkRepo.Link(ctx, otherProfile.ID, profile.CollectionCertifications, shared.ID))
	s.Require().NoError(s.linkRepo.Link(ctx, otherProfile.ID, profile.CollectionCertifications, solo.ID))

	accounts, err := s.linkRepo.AccountsLinking(ctx, profile.CollectionCertifications, []uuid.UUID{shared.ID})
	s.Require().NoError(err)
	s.ElementsMatch([]uuid.UUID{s.owner.ID, other.ID}, accounts)

	accounts, err = s.linkRepo.AccountsLinking(ctx, profile.CollectionCertifications, []uuid.UUID{shared.ID, solo.ID})
	s.Require().NoError(err)
	s.Len(accounts, 2)

	accounts, err = s.linkRepo.AccountsLinking(ctx, profile.CollectionLanguages, []uuid.UUID{shared.ID})
	s.Require().NoError(err)
	s.Empty(accounts)
}

func (s *RepoIntegrationTestSuite) Test_Project_CRUD() {
	ctx := context.Background()
	now := time.Now().UTC()

	p := &project.Project{
		ID:           uuid.New(),
		OwnerID:      s.owner.ID,
		Name:         "Portfolio",
		Description:  "This site",
		Status:       "live",
		Completion:   "100%",
		Technologies: "Go, Postgres",
		Type:         "web",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.Require().NoError(s.projectRepo.Save(ctx, p))

	found, err := s.projectRepo.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Portfolio", found.Name)
	s.Nil(found.Link)

	found.SetImage("https://cdn.test/p.png", "p_1")
	s.Require().NoError(s.projectRepo.Update(ctx, found))

	list, err := s.projectRepo.ListByOwner(ctx, s.owner.ID, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Require().NotNil(list[0].ImagePublicID)
	s.Equal("p_1", *list[0].ImagePublicID)

	s.Require().NoError(s.projectRepo.Delete(ctx, p.ID))
	_, err = s.projectRepo.FindByID(ctx, p.ID)
	s.True(errors.Is(err, apperror.ErrNotFound))
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/adapters/event"
	"github.com/khoahotran/portfolio-api/adapters/persistence"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/collection"
	projectUC "github.com/khoahotran/portfolio-api/internal/application/usecase/project"
	"github.com/khoahotran/portfolio-api/internal/config"
	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/auth"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type portfolioFile struct {
	FirstName       string                         `json:"first_name"`
	LastName        string                         `json:"last_name"`
	Title           string                         `json:"title"`
	Bio             string                         `json:"bio"`
	Location        string                         `json:"location"`
	Phone           string                         `json:"phone"`
	Website         string                         `json:"website"`
	Github          string                         `json:"github"`
	Linkedin        string                         `json:"linkedin"`
	Twitter         string                         `json:"twitter"`
	SkillCategories []collection.SkillCategorySpec `json:"skill_categories"`
	Certifications  []collection.CertificationSpec `json:"certifications"`
	Languages       []collection.LanguageSpec      `json:"languages"`
	Projects        []projectUC.CreateProjectInput `json:"projects"`
}

func main() {
	portfolioPath := flag.String("portfolio", "", "optional JSON file with profile fields, collections and projects")
	flag.Parse()

	fmt.Println("adding owner into database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load config: %v\n", err)
		os.Exit(1)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()

	username := cfg.Portfolio.OwnerUsername
	email := os.Getenv("OWNER_EMAIL")
	password := os.Getenv("OWNER_PASSWORD")
	if username == "" || email == "" || password == "" {
		appLogger.Fatal("owner username, OWNER_EMAIL and OWNER_PASSWORD must be set", errors.New("missing owner settings"))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		appLogger.Fatal("cannot hash password", err)
	}

	if err := persistence.RunMigrations(cfg, appLogger); err != nil {
		appLogger.Fatal("cannot migrate database", err)
	}
	pool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect DB", err)
	}
	defer pool.Close()

	ctx := context.Background()
	userRepo := persistence.NewPostgresUserRepo(pool, appLogger)
	profileRepo := persistence.NewPostgresProfileRepo(pool, appLogger)

	owner, err := userRepo.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		owner = &user.User{ID: uuid.New(), Username: username, Email: email, PasswordHash: hash}
		if err := userRepo.Create(ctx, owner); err != nil {
			appLogger.Fatal("cannot add owner", err)
		}
	case err != nil:
		appLogger.Fatal("cannot look up owner", err)
	default:
		if _, err := pool.Exec(ctx, `UPDATE users SET email = $2, password_hash = $3 WHERE id = $1`, owner.ID, email, hash); err != nil {
			appLogger.Fatal("cannot update owner", err)
		}
	}

	ownerProfile, err := profileRepo.GetOrCreate(ctx, owner.ID)
	if err != nil {
		appLogger.Fatal("cannot create owner profile", err)
	}
	appLogger.Info("added or updated owner", zap.String("username", username))

	if *portfolioPath == "" {
		return
	}

	raw, err := os.ReadFile(*portfolioPath)
	if err != nil {
		appLogger.Fatal("cannot read portfolio file", err)
	}
	var pf portfolioFile
	if err := json.Unmarshal(raw, &pf); err != nil {
		appLogger.Fatal("cannot parse portfolio file", err)
	}

	owner.FirstName, owner.LastName = pf.FirstName, pf.LastName
	if err := userRepo.Update(ctx, owner); err != nil {
		appLogger.Fatal("cannot update owner names", err)
	}

	ownerProfile.Title = pf.Title
	ownerProfile.Bio = pf.Bio
	ownerProfile.Location = pf.Location
	ownerProfile.Phone = pf.Phone
	ownerProfile.Website = pf.Website
	ownerProfile.Github = pf.Github
	ownerProfile.Linkedin = pf.Linkedin
	ownerProfile.Twitter = pf.Twitter
	if err := profileRepo.Update(ctx, ownerProfile); err != nil {
		appLogger.Fatal("cannot update owner profile", err)
	}

	sync := collection.NewSynchronizer(
		persistence.NewTxManager(pool, appLogger),
		persistence.NewPostgresLinkRepo(pool, appLogger),
		persistence.NewPostgresCertificationRepo(pool, appLogger),
		persistence.NewPostgresLanguageRepo(pool, appLogger),
		persistence.NewPostgresSkillRepo(pool, appLogger),
		persistence.NewNoopCache(),
		event.NewNoopPublisher(appLogger),
		appLogger,
	)
	if len(pf.SkillCategories) > 0 {
		if _, err := sync.SyncSkillCategories(ctx, ownerProfile, pf.SkillCategories); err != nil {
			appLogger.Fatal("cannot import skills", err)
		}
	}
	if len(pf.Certifications) > 0 {
		if _, err := sync.SyncCertifications(ctx, ownerProfile, pf.Certifications); err != nil {
			appLogger.Fatal("cannot import certifications", err)
		}
	}
	if len(pf.Languages) > 0 {
		if _, err := sync.SyncLanguages(ctx, ownerProfile, pf.Languages); err != nil {
			appLogger.Fatal("cannot import languages", err)
		}
	}

	projectRepo := persistence.NewPostgresProjectRepo(pool, appLogger)
	existing, err := projectRepo.ListByOwner(ctx, owner.ID, 1, 0)
	if err != nil {
		appLogger.Fatal("cannot list projects", err)
	}
	if len(existing) > 0 {
		appLogger.Info("owner already has projects, skipping project import")
	} else {
		createProject := projectUC.NewCreateProjectUseCase(projectRepo, appLogger)
		for _, input := range pf.Projects {
			input.OwnerID = owner.ID
			if _, err := createProject.Execute(ctx, input); err != nil {
				appLogger.Fatal("cannot import project", err, zap.String("name", input.Name))
			}
		}
	}

	fmt.Printf("imported portfolio for '%s' successfully!\n", username)
}

package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

const feedSize = 20

type FeedConfig struct {
	Title   string
	SiteURL string
}

// FeedUseCase builds the public RSS feed of the portfolio owner's newest projects.
type FeedUseCase struct {
	resolver    *identity.Resolver
	projectRepo project.Repository
	cfg         FeedConfig
	logger      logger.Logger
}

func NewFeedUseCase(resolver *identity.Resolver, pRepo project.Repository, cfg FeedConfig, log logger.Logger) *FeedUseCase {
	cfg.SiteURL = strings.TrimSuffix(cfg.SiteURL, "/")
	return &FeedUseCase{resolver: resolver, projectRepo: pRepo, cfg: cfg, logger: log}
}

func (uc *FeedUseCase) Execute(ctx context.Context) (*feeds.Feed, error) {
	owner, err := uc.resolver.Owner(ctx)
	if err != nil {
		return nil, err
	}

	projects, err := uc.projectRepo.ListByOwner(ctx, owner.ID, feedSize, 0)
	if err != nil {
		uc.logger.Error("Failed to list projects for feed", err)
		return nil, err
	}

	author := strings.TrimSpace(owner.FirstName + " " + owner.LastName)
	if author == "" {
		author = owner.Username
	}

	feed := &feeds.Feed{
		Title:       uc.cfg.Title,
		Link:        &feeds.Link{Href: uc.cfg.SiteURL},
		Description: fmt.Sprintf("Projects by %s.", author),
		Author:      &feeds.Author{Name: author},
		Created:     time.Now(),
	}

	for _, p := range projects {
		link := fmt.Sprintf("%s/projects/%s", uc.cfg.SiteURL, p.ID)
		if p.Link != nil && *p.Link != "" {
			link = *p.Link
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          p.ID.String(),
			Title:       p.Name,
			Link:        &feeds.Link{Href: link},
			Description: p.Description,
			Created:     p.CreatedAt,
			Updated:     p.UpdatedAt,
		})
	}

	uc.logger.Info("Project feed generated", zap.Int("item_count", len(feed.Items)))
	return feed, nil
}

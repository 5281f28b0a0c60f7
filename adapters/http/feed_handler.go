package http

import (
	"github.com/gin-gonic/gin"

	projectUC "github.com/khoahotran/portfolio-api/internal/application/usecase/project"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type FeedHandler struct {
	feedUseCase *projectUC.FeedUseCase
	logger      logger.Logger
}

func NewFeedHandler(uc *projectUC.FeedUseCase, log logger.Logger) *FeedHandler {
	return &FeedHandler{feedUseCase: uc, logger: log}
}

func (h *FeedHandler) ProjectsRSS(c *gin.Context) {
	feed, err := h.feedUseCase.Execute(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	if err := feed.WriteRss(c.Writer); err != nil {
		h.logger.Error("Failed to write RSS feed to response", err)
	}
}

func (h *FeedHandler) ProjectsAtom(c *gin.Context) {
	feed, err := h.feedUseCase.Execute(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Type", "application/atom+xml; charset=utf-8")
	if err := feed.WriteAtom(c.Writer); err != nil {
		h.logger.Error("Failed to write Atom feed to response", err)
	}
}

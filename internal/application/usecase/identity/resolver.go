package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

// Caller is who sent the request. The zero value is an anonymous visitor.
type Caller struct {
	AccountID     uuid.UUID
	Authenticated bool
}

func Anonymous() Caller {
	return Caller{}
}

func Account(id uuid.UUID) Caller {
	return Caller{AccountID: id, Authenticated: true}
}

// Resolver decides whose portfolio a request reads: the caller's own, or the
// public owner's for anonymous visitors.
type Resolver struct {
	userRepo      user.Repository
	ownerUsername string
	logger        logger.Logger

	mu      sync.RWMutex
	ownerID uuid.UUID
}

func NewResolver(repo user.Repository, ownerUsername string, log logger.Logger) *Resolver {
	return &Resolver{userRepo: repo, ownerUsername: ownerUsername, logger: log}
}

func (r *Resolver) OwnerUsername() string {
	return r.ownerUsername
}

func (r *Resolver) Resolve(ctx context.Context, caller Caller) (*user.User, error) {
	if caller.Authenticated {
		return r.userRepo.FindByID(ctx, caller.AccountID)
	}
	return r.Owner(ctx)
}

// Owner returns the public owner account. Only a successful lookup is
// remembered, so a deployment that seeds the owner later recovers without a
// restart.
func (r *Resolver) Owner(ctx context.Context) (*user.User, error) {
	if r.ownerUsername == "" {
		return nil, apperror.NewNotFound("account", "<portfolio owner not configured>")
	}

	r.mu.RLock()
	id := r.ownerID
	r.mu.RUnlock()

	if id != uuid.Nil {
		u, err := r.userRepo.FindByID(ctx, id)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		r.forget(id)
	}

	u, err := r.userRepo.FindByUsername(ctx, r.ownerUsername)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			r.logger.Warn("Portfolio owner account not found", zap.String("username", r.ownerUsername))
			return nil, apperror.NewNotFound("account", r.ownerUsername)
		}
		return nil, err
	}

	r.mu.Lock()
	r.ownerID = u.ID
	r.mu.Unlock()
	return u, nil
}

func (r *Resolver) forget(id uuid.UUID) {
	r.mu.Lock()
	if r.ownerID == id {
		r.ownerID = uuid.Nil
	}
	r.mu.Unlock()
}

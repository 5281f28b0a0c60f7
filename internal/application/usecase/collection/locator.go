package collection

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

// Locator finds the profile a request works on.
type Locator struct {
	resolver    *identity.Resolver
	profileRepo profile.Repository
}

func NewLocator(resolver *identity.Resolver, profileRepo profile.Repository) *Locator {
	return &Locator{resolver: resolver, profileRepo: profileRepo}
}

// Target returns the account a read is served from and its profile. The
// profile is nil when that account never wrote one.
func (l *Locator) Target(ctx context.Context, caller identity.Caller) (*user.User, *profile.Profile, error) {
	u, err := l.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, nil, err
	}
	p, err := l.profileRepo.FindByAccountID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return u, nil, nil
		}
		return nil, nil, err
	}
	return u, p, nil
}

// Own returns the caller's profile for a write, creating it on first use.
func (l *Locator) Own(ctx context.Context, caller identity.Caller) (*profile.Profile, error) {
	if !caller.Authenticated {
		return nil, apperror.NewUnauthorized("authentication required", nil)
	}
	return l.profileRepo.GetOrCreate(ctx, caller.AccountID)
}

// Cached serves key from cache, falling back to load and storing its result.
// Cache failures only cost a trip to the database.
func Cached[T any](ctx context.Context, cache service.Cache, log logger.Logger, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var out T
	found, err := cache.GetJSON(ctx, key, &out)
	if err != nil {
		log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	} else if found {
		return out, nil
	}

	out, err = load(ctx)
	if err != nil {
		return out, err
	}
	if err := cache.SetJSON(ctx, key, out, ttl); err != nil {
		log.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}

// Invalidate drops every cached read for the account.
func Invalidate(ctx context.Context, cache service.Cache, log logger.Logger, accountID uuid.UUID) {
	if err := cache.Del(ctx, service.PublicCacheKeys(accountID)...); err != nil {
		log.Warn("Failed to invalidate portfolio cache", zap.Error(err), zap.String("account_id", accountID.String()))
	}
}

// InvalidateLinked drops the cached reads of accountIDs and of every account
// whose profile links one of itemIDs. Shared rows show up in all of them.
func InvalidateLinked(
	ctx context.Context,
	cache service.Cache,
	links profile.LinkRepository,
	log logger.Logger,
	c profile.Collection,
	itemIDs []uuid.UUID,
	accountIDs ...uuid.UUID,
) {
	linked, err := links.AccountsLinking(ctx, c, itemIDs)
	if err != nil {
		log.Warn("Failed to list accounts linking changed items", zap.Error(err), zap.String("collection", string(c)))
	}

	seen := make(map[uuid.UUID]bool, len(linked)+len(accountIDs))
	keys := []string{}
	for _, id := range append(accountIDs, linked...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, service.PublicCacheKeys(id)...)
	}
	if len(keys) == 0 {
		return
	}
	if err := cache.Del(ctx, keys...); err != nil {
		log.Warn("Failed to invalidate portfolio cache", zap.Error(err), zap.Int("accounts", len(seen)))
	}
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Cache interface {
	// GetJSON decodes the cached value into dest and reports whether it was found.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// PublicCacheKeys lists every read-cache key built for an account.
func PublicCacheKeys(accountID uuid.UUID) []string {
	return []string{
		PublicCacheKey(accountID, "profile"),
		PublicCacheKey(accountID, "certifications"),
		PublicCacheKey(accountID, "languages"),
		PublicCacheKey(accountID, "skill_categories"),
		PublicCacheKey(accountID, "skills"),
	}
}

func PublicCacheKey(accountID uuid.UUID, section string) string {
	return fmt.Sprintf("portfolio:%s:%s", accountID, section)
}

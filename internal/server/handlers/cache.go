package handlers

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ProductListCacheKey      = "retail:products"
	DashboardSummaryCacheKey = "retail:dashboard-summary"
	CacheTTLShort            = 5 * time.Minute
)

// invalidateCatalogCaches drops every cache a catalog or order write can
// stale. Best effort: a failed DEL only means one short TTL of stale reads.
func invalidateCatalogCaches(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	_ = rdb.Del(ctx, ProductListCacheKey, DashboardSummaryCacheKey)
}

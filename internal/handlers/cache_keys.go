package handlers

import (
	"context"
	"log"
	"time"

	"fashionstore/internal/cache"
)

const (
	productsCacheKey   = "products:all"
	metricsCacheKey    = "metrics:summary"
	orderStatsCacheKey = "metrics:orders"

	listingCacheTTL = 60 * time.Second
	metricsCacheTTL = 30 * time.Second
)

// invalidateCatalogCache drops every cached view a catalog or order
// mutation can stale. Failures are logged only; the write already happened.
func invalidateCatalogCache(ctx context.Context, store *cache.Cache) {
	if err := store.Del(ctx, productsCacheKey, metricsCacheKey, orderStatsCacheKey); err != nil {
		log.Println("[CACHE] [ERROR] invalidate failed:", err)
	}
}

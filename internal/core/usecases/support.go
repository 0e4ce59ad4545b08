package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
)

var tracer = otel.Tracer("github.com/yangonmaps/citymap/internal/core/usecases")

const (
	itemTTL = 600 // 10 min for single records
	listTTL = 60  // lists are not invalidated on write, keep them short
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func clampListLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func listCacheKey(prefix string, f ports.ListFilter) string {
	return fmt.Sprintf("%s:list:%s:%t:%d:%d", prefix, f.CityID, f.ActiveOnly, f.Limit, f.Offset)
}

func cacheGet(ctx context.Context, cache ports.CacheService, key string, dst any) bool {
	if cache == nil {
		return false
	}
	data, err := cache.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func cacheSet(ctx context.Context, cache ports.CacheService, key string, v any, ttlSeconds int) {
	if cache == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		_ = cache.Set(ctx, key, data, ttlSeconds)
	}
}

func cacheDelete(ctx context.Context, cache ports.CacheService, keys ...string) {
	if cache == nil {
		return
	}
	for _, key := range keys {
		if err := cache.Delete(ctx, key); err != nil {
			slog.DebugContext(ctx, "cache delete failed", "key", key, "error", err)
		}
	}
}

// publish is best-effort; a broker outage must not fail the write.
func publish(ctx context.Context, pub ports.EventPublisher, kind domain.ContentKind, action domain.ContentAction, id, cityID string) {
	if pub == nil {
		return
	}
	event := &domain.ContentEvent{Kind: kind, Action: action, ID: id, CityID: cityID, At: time.Now().UTC()}
	if err := pub.PublishContentEvent(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish content event failed", "subject", event.Subject(), "id", id, "error", err)
	}
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func mergeText(dst *domain.LocalizedText, src *domain.LocalizedText) bool {
	if src == nil {
		return false
	}
	*dst = *src
	return true
}

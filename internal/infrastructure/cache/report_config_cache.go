package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dealer/reporting/internal/domain/report"
	"github.com/dealer/reporting/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultConfigTTL  = 10 * time.Minute
	defaultLockTTL    = 5 * time.Second
	defaultKeyPrefix  = "reporting:config:"
	lockSuffix        = ":lock"
	subSectionSegment = "subsection:"
)

// ReportConfigCache is a read-through cache in front of a
// report.ReportConfigRepository. Lookups keyed by report id are stored as
// JSON. Store errors never fail a read; the repository answers instead.
type ReportConfigCache struct {
	repo    report.ReportConfigRepository
	store   Store
	locker  Locker
	ttl     time.Duration
	lockTTL time.Duration
	prefix  string
	logger  *zap.Logger

	hits   int64
	misses int64
}

// ReportConfigCacheOption configures a ReportConfigCache
type ReportConfigCacheOption func(*ReportConfigCache)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ReportConfigCacheOption {
	return func(c *ReportConfigCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTTL sets the entry lifetime
func WithTTL(ttl time.Duration) ReportConfigCacheOption {
	return func(c *ReportConfigCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLockTTL sets how long a fill lock is held at most
func WithLockTTL(ttl time.Duration) ReportConfigCacheOption {
	return func(c *ReportConfigCache) {
		if ttl > 0 {
			c.lockTTL = ttl
		}
	}
}

// WithKeyPrefix sets the namespace of every key
func WithKeyPrefix(prefix string) ReportConfigCacheOption {
	return func(c *ReportConfigCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithLocker sets the fill locker. Without one every miss fills the store.
func WithLocker(locker Locker) ReportConfigCacheOption {
	return func(c *ReportConfigCache) {
		c.locker = locker
	}
}

// NewReportConfigCache wraps repo with store
func NewReportConfigCache(repo report.ReportConfigRepository, store Store, opts ...ReportConfigCacheOption) *ReportConfigCache {
	c := &ReportConfigCache{
		repo:    repo,
		store:   store,
		ttl:     defaultConfigTTL,
		lockTTL: defaultLockTTL,
		prefix:  defaultKeyPrefix,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheStats reports hit and miss counters
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// Stats returns the current counters
func (c *ReportConfigCache) Stats() CacheStats {
	return CacheStats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
	}
}

// Invalidate drops every entry of the report and all subsection listings.
func (c *ReportConfigCache) Invalidate(ctx context.Context, reportID int64) error {
	if _, err := c.store.DeletePrefix(ctx, c.reportKey(reportID, "")); err != nil {
		return err
	}
	if _, err := c.store.DeletePrefix(ctx, c.prefix+subSectionSegment); err != nil {
		return err
	}
	c.logger.Debug("Invalidated report configuration", zap.Int64("report_id", reportID))
	return nil
}

// InvalidateAll drops every cached definition.
func (c *ReportConfigCache) InvalidateAll(ctx context.Context) error {
	deleted, err := c.store.DeletePrefix(ctx, c.prefix)
	if err != nil {
		return err
	}
	c.logger.Info("Invalidated all report configuration", zap.Int64("deleted_count", deleted))
	return nil
}

// FindReport implements report.ReportConfigRepository
func (c *ReportConfigCache) FindReport(ctx context.Context, reportID, clientID int64) (*report.Report, error) {
	key := c.reportKey(reportID, fmt.Sprintf("visible:%d", clientID))
	return readThrough(ctx, c, key, func() (*report.Report, error) {
		return c.repo.FindReport(ctx, reportID, clientID)
	})
}

// FindClientReport implements report.ReportConfigRepository
func (c *ReportConfigCache) FindClientReport(ctx context.Context, reportID, clientID int64) (*report.Report, error) {
	key := c.reportKey(reportID, fmt.Sprintf("owned:%d", clientID))
	return readThrough(ctx, c, key, func() (*report.Report, error) {
		return c.repo.FindClientReport(ctx, reportID, clientID)
	})
}

// ListLines implements report.ReportConfigRepository
func (c *ReportConfigCache) ListLines(ctx context.Context, reportID int64) ([]report.ReportLine, error) {
	return readThrough(ctx, c, c.reportKey(reportID, "lines"), func() ([]report.ReportLine, error) {
		return c.repo.ListLines(ctx, reportID)
	})
}

// ListKeyLines implements report.ReportConfigRepository
func (c *ReportConfigCache) ListKeyLines(ctx context.Context, reportID int64) ([]report.ReportLine, error) {
	return readThrough(ctx, c, c.reportKey(reportID, "key_lines"), func() ([]report.ReportLine, error) {
		return c.repo.ListKeyLines(ctx, reportID)
	})
}

// FirstLine implements report.ReportConfigRepository
func (c *ReportConfigCache) FirstLine(ctx context.Context, reportID int64) (*report.ReportLine, error) {
	return readThrough(ctx, c, c.reportKey(reportID, "first_line"), func() (*report.ReportLine, error) {
		return c.repo.FirstLine(ctx, reportID)
	})
}

// FindLine is not cached. Keys are scoped by report id.
func (c *ReportConfigCache) FindLine(ctx context.Context, lineID int64) (*report.ReportLine, error) {
	return c.repo.FindLine(ctx, lineID)
}

// FindLineByName is not cached.
func (c *ReportConfigCache) FindLineByName(ctx context.Context, name string) (*report.ReportLine, error) {
	return c.repo.FindLineByName(ctx, name)
}

// ListSummaries implements report.ReportConfigRepository
func (c *ReportConfigCache) ListSummaries(ctx context.Context, reportID int64, main bool) ([]report.Summary, error) {
	key := c.reportKey(reportID, fmt.Sprintf("summaries:%t", main))
	return readThrough(ctx, c, key, func() ([]report.Summary, error) {
		return c.repo.ListSummaries(ctx, reportID, main)
	})
}

// MainSummary implements report.ReportConfigRepository. A missing main
// summary is cached as JSON null.
func (c *ReportConfigCache) MainSummary(ctx context.Context, reportID int64) (*report.Summary, error) {
	return readThrough(ctx, c, c.reportKey(reportID, "main_summary"), func() (*report.Summary, error) {
		return c.repo.MainSummary(ctx, reportID)
	})
}

// ListBySubSection implements report.ReportConfigRepository
func (c *ReportConfigCache) ListBySubSection(ctx context.Context, clientID, subSectionID int64) ([]report.Report, error) {
	key := fmt.Sprintf("%s%s%d:%d", c.prefix, subSectionSegment, clientID, subSectionID)
	return readThrough(ctx, c, key, func() ([]report.Report, error) {
		return c.repo.ListBySubSection(ctx, clientID, subSectionID)
	})
}

func (c *ReportConfigCache) reportKey(reportID int64, suffix string) string {
	return fmt.Sprintf("%sreport:%d:%s", c.prefix, reportID, suffix)
}

// readThrough serves key from the store or fills it from load. Only one
// caller fills a key at a time when a locker is configured; the others read
// the repository directly.
func readThrough[T any](ctx context.Context, c *ReportConfigCache, key string, load func() (T, error)) (T, error) {
	span := trace.SpanFromContext(ctx)
	if data, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("Report config cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			atomic.AddInt64(&c.hits, 1)
			telemetry.SetAttribute(span, telemetry.SpanAttrCacheHit, true)
			return cached, nil
		}
		c.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
		_ = c.store.Delete(ctx, key)
	}
	atomic.AddInt64(&c.misses, 1)
	telemetry.SetAttribute(span, telemetry.SpanAttrCacheHit, false)

	if c.locker != nil {
		release, err := c.locker.Obtain(ctx, key+lockSuffix, c.lockTTL)
		if err != nil {
			if !errors.Is(err, ErrLockNotObtained) {
				c.logger.Warn("Report config cache lock failed", zap.String("key", key), zap.Error(err))
			}
			return load()
		}
		defer release(ctx)
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Report config cache encode failed", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Report config cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

var _ report.ReportConfigRepository = (*ReportConfigCache)(nil)

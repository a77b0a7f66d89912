package news

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Fetcher retrieves headlines from the upstream provider.
type Fetcher interface {
	Fetch(ctx context.Context, limit int) ([]Article, error)
}

const (
	minLimit     = 1
	maxLimit     = 100
	defaultLimit = 20
)

// Service serves the news feed with a short TTL cache in front of the
// upstream. All failure modes degrade to an empty feed.
type Service struct {
	fetcher Fetcher
	ttl     time.Duration
	logger  *slog.Logger

	mu        sync.Mutex
	cached    []Article
	fetchedAt time.Time
}

// NewService constructs the news service. A nil fetcher disables the feed.
func NewService(fetcher Fetcher, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fetcher: fetcher, ttl: ttl, logger: logger}
}

// Headlines returns up to limit articles. Limits outside [1, 100] are
// clamped; zero means the default page size. Never returns an error: a
// broken upstream yields an empty list.
func (s *Service) Headlines(ctx context.Context, limit int) []Article {
	switch {
	case limit == 0:
		limit = defaultLimit
	case limit < minLimit:
		limit = minLimit
	case limit > maxLimit:
		limit = maxLimit
	}

	if s.fetcher == nil {
		return []Article{}
	}

	s.mu.Lock()
	if s.cached != nil && time.Since(s.fetchedAt) < s.ttl {
		cached := s.cached
		s.mu.Unlock()
		return clip(cached, limit)
	}
	s.mu.Unlock()

	articles, err := s.fetcher.Fetch(ctx, maxLimit)
	if err != nil {
		s.logger.Warn("news fetch failed", "error", err)
		return []Article{}
	}

	s.mu.Lock()
	s.cached = articles
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return clip(articles, limit)
}

func clip(articles []Article, limit int) []Article {
	if len(articles) > limit {
		articles = articles[:limit]
	}
	out := make([]Article, len(articles))
	copy(out, articles)
	return out
}

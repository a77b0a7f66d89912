package news_test

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	news "vims/internal/news"
	"vims/internal/news/mocks"
)

func articles(n int) []news.Article {
	out := make([]news.Article, n)
	for i := range out {
		out[i] = news.Article{Title: "headline", PublishedAt: time.Now()}
	}
	return out
}

func TestHeadlinesClampsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	// The upstream is always asked for a full page; the limit clips locally.
	fetcher.EXPECT().Fetch(gomock.Any(), 100).Return(articles(100), nil).AnyTimes()

	svc := news.NewService(fetcher, time.Minute, nil)
	ctx := context.Background()

	assert.Len(t, svc.Headlines(ctx, 0), 20)
	assert.Len(t, svc.Headlines(ctx, -5), 1)
	assert.Len(t, svc.Headlines(ctx, 7), 7)
	assert.Len(t, svc.Headlines(ctx, 500), 100)
}

func TestHeadlinesCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), 100).Return(articles(10), nil).Times(1)

	svc := news.NewService(fetcher, time.Minute, nil)
	ctx := context.Background()

	assert.Len(t, svc.Headlines(ctx, 5), 5)
	// Second call inside the TTL must not hit the upstream again.
	assert.Len(t, svc.Headlines(ctx, 5), 5)
}

func TestHeadlinesDegradesToEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), 100).Return(nil, errors.New("upstream down"))

	svc := news.NewService(fetcher, time.Minute, nil)

	got := svc.Headlines(context.Background(), 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHeadlinesDisabledFeed(t *testing.T) {
	svc := news.NewService(nil, time.Minute, nil)

	got := svc.Headlines(context.Background(), 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

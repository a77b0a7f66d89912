// Package news surfaces recent accident-related headlines on the dashboard.
// The feed is best effort: upstream failures degrade to an empty list, never
// to an error page.
package news

import "time"

// Article is one headline in the feed.
type Article struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

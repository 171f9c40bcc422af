// Package preview resolves a link's title, description and image for the
// website form.
package preview

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the upstream could not produce a preview.
var ErrUnavailable = errors.New("link preview unavailable")

// Preview is the metadata shown before a website is saved.
type Preview struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	URL         string `json:"url"`
}

// Fetcher resolves previews.
type Fetcher interface {
	Fetch(ctx context.Context, link string) (*Preview, error)
}

package core

import (
	"context"
	"net/url"
)

// ImageGenerator is the external image-generation collaborator.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OfflineImageGenerator returns a placeholder link so the image path
// keeps working without a provider.
type OfflineImageGenerator struct{}

func (OfflineImageGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "https://placehold.co/1024x1024?text=" + url.QueryEscape(prompt), nil
}

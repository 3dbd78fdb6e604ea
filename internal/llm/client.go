package llm

import (
	"context"
	"errors"
)

// ErrNoContent is returned when a provider answers without usable output.
var ErrNoContent = errors.New("llm: no content in response")

type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Image is a raw payload as returned by the provider. It is not validated here.
type Image struct {
	Data     []byte
	MIMEType string
}

type ImageClient interface {
	GenerateImage(ctx context.Context, prompt string) (Image, error)
}

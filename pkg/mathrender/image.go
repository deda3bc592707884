package mathrender

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/net/html"
)

// DefaultImageURL is the LaTeX image service used by the image renderer.
const DefaultImageURL = "https://latex.codecogs.com/svg.latex?"

// Image emits an <img> whose source is a LaTeX image service URL.
type Image struct {
	baseURL string
}

// NewImage creates an Image renderer. An empty baseURL uses DefaultImageURL.
func NewImage(baseURL string) *Image {
	if baseURL == "" {
		baseURL = DefaultImageURL
	}
	return &Image{baseURL: baseURL}
}

// Name implements Renderer.
func (i *Image) Name() string {
	return NameImage
}

// URL returns the image URL for an already expanded body.
func (i *Image) URL(body string, display bool) string {
	if display {
		body = `\displaystyle ` + body
	}
	return i.baseURL + url.PathEscape(body)
}

// Render implements Renderer.
func (i *Image) Render(_ context.Context, body string, opts Options) (string, error) {
	if err := checkBraces(body); err != nil {
		return "", err
	}

	expanded, err := opts.Macros.Expand(body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	return fmt.Sprintf(`<img class="math-image" src="%s" alt="%s">`,
		html.EscapeString(i.URL(expanded, opts.DisplayMode)),
		html.EscapeString(body),
	), nil
}

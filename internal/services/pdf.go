package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/starwalkn/gotenberg-go-client/v8"
	"github.com/starwalkn/gotenberg-go-client/v8/document"
)

// PDFRenderer converts HTML documents to PDF through a Gotenberg instance.
// It is optional: without a configured URL the handlers report the feature as
// unavailable.
type PDFRenderer struct {
	client  *gotenberg.Client
	timeout time.Duration
}

func NewPDFRenderer(url, timeoutStr string) (*PDFRenderer, error) {
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		timeout = 30 * time.Second
	}

	client, err := gotenberg.NewClient(url, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create gotenberg client: %w", err)
	}

	return &PDFRenderer{client: client, timeout: timeout}, nil
}

// RenderHTML converts the HTML content into a PDF stored at outPath.
func (r *PDFRenderer) RenderHTML(ctx context.Context, html, outPath string) error {
	index, err := document.FromReader("index.html", strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to build document: %w", err)
	}

	req := gotenberg.NewHTMLRequest(index)

	renderCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Store(renderCtx, req, outPath); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

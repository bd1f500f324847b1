package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultFetchTimeout = 30 * time.Second

	// maxFetchBytes caps how much of a page is read.
	maxFetchBytes = 10 << 20
)

// URLFetcher fetches web pages and extracts their visible text.
type URLFetcher struct {
	client *http.Client
}

// NewURLFetcher creates a URLFetcher with a bounded request timeout.
func NewURLFetcher() *URLFetcher {
	return &URLFetcher{
		client: &http.Client{Timeout: defaultFetchTimeout},
	}
}

// Fetch retrieves rawURL and returns its page title and visible text.
// The title is empty if the page has no <title> element.
func (f *URLFetcher) Fetch(ctx context.Context, rawURL string) (title, text string, err error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", "", fmt.Errorf("%w: invalid url %q", ErrExtraction, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("%w: building request: %w", ErrExtraction, err)
	}
	req.Header.Set("User-Agent", "knowledged/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: fetching %s: %w", ErrExtraction, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%w: fetching %s: status %d", ErrExtraction, rawURL, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", "", fmt.Errorf("%w: parsing html: %w", ErrExtraction, err)
	}

	title, text = extractHTML(doc)
	if text == "" {
		return "", "", ErrEmptyContent
	}
	return title, text, nil
}

// extractHTML walks the parse tree collecting text nodes, skipping script,
// style and other non-visible elements, and captures the document title.
func extractHTML(doc *html.Node) (title, text string) {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			case "title":
				if title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
				b.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title, normalizeWhitespace(b.String())
}

package clients

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"resty.dev/v3"

	"github.com/deksmo/deksmo/internal"
)

// Grabber collects image links from a web page so they can be queued as a
// chapter. Selectors come from per-site rules.
type Grabber struct {
	client *resty.Client
	rules  []SiteRule
}

func NewGrabber(opts *HTTPOptions, rules []SiteRule) *Grabber {
	return &Grabber{
		client: newHTTPClient(opts),
		rules:  rules,
	}
}

func (g *Grabber) Close() {
	if g.client != nil {
		_ = g.client.Close()
	}
}

// CollectImageLinks fetches the page and returns the absolute URLs found in
// the configured attribute, in document order.
func (g *Grabber) CollectImageLinks(ctx context.Context, pageURL string) ([]string, error) {
	rule := RuleFor(g.rules, pageURL)

	response, err := g.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer response.Body.Close()

	contentType := response.Header().Get("Content-Type")
	bodyReader, err := charset.NewReader(response.Body, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to create charset reader: %w", err)
	}

	document, err := goquery.NewDocumentFromReader(bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML document: %w", err)
	}

	var links []string
	document.Find(rule.ImageSelector).Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr(rule.ImageAttr)
		if !exists || href == "" {
			return
		}
		absolute, err := completeURL(href, pageURL)
		if err != nil {
			internal.WarningLog("Dropping unparseable image link %q: %s", href, err.Error())
			return
		}
		links = append(links, absolute)
	})

	internal.InfoLog("Found %d images on page %s", len(links), pageURL)
	return links, nil
}

// completeURL resolves a possibly relative href against the page URL.
func completeURL(inputURL, pageURL string) (string, error) {
	if inputURL == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	parsed, err := url.Parse(inputURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsed.IsAbs() {
		return inputURL, nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	if base.Scheme == "" {
		base.Scheme = "https"
	}
	return base.ResolveReference(parsed).String(), nil
}

// PageTitle derives a chapter name from the last segment of the page URL
// path, falling back to the hostname for bare roots.
func PageTitle(pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	segment := path.Base(strings.TrimSuffix(parsed.Path, "/"))
	if segment == "" || segment == "." || segment == "/" {
		segment = parsed.Hostname()
	}
	if segment == "" {
		return "", fmt.Errorf("cannot derive a title from %q", pageURL)
	}
	return segment, nil
}

// FilenameFromURL extracts the final path component for use as an image
// name; a blank result falls back to a positional name chosen by callers.
func FilenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

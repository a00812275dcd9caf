package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/Belphemur/MediaDownloader/internal/config"
	"github.com/Belphemur/MediaDownloader/internal/models"
)

// maxPageSize caps how much of a page is read
const maxPageSize = 8 << 20

var (
	mediaURLPattern = regexp.MustCompile(`https?://[^\s"'<>\\]+?\.m3u8(?:\?[^\s"'<>\\]*)?`)
	mediaAttributes = []string{"href", "src", "data-src"}
)

// Inspector fetches the pages shown in the browser surface and finds the media
// playlists they reference.
type Inspector struct {
	client    *http.Client
	userAgent string

	mu    sync.RWMutex
	proxy *url.URL
}

// NewInspector creates an inspector with the given request timeout and user agent
func NewInspector(timeout time.Duration, userAgent string) *Inspector {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	i := &Inspector{userAgent: userAgent}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = i.proxyFor
	i.client = &http.Client{
		Timeout:   timeout,
		Transport: newDecodingTransport(transport),
	}
	return i
}

// NewInspectorFromConfig creates an inspector using the configured client timeout and user agent
func NewInspectorFromConfig(cfg *config.Config) *Inspector {
	timeout := 30 * time.Second
	if cfg.ClientTimeout != "" {
		if parsed, err := time.ParseDuration(cfg.ClientTimeout); err != nil {
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("timeout", cfg.ClientTimeout).Msg("Invalid timeout duration, using default 30s")
		} else {
			timeout = parsed
		}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	return NewInspector(timeout, userAgent)
}

// SetProxy routes page requests through address. An empty address disables the proxy.
// Addresses without a scheme are treated as http proxies.
func (i *Inspector) SetProxy(address string) error {
	address = strings.TrimSpace(address)
	var proxy *url.URL
	if address != "" {
		if !strings.Contains(address, "://") {
			address = "http://" + address
		}
		u, err := url.Parse(address)
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid proxy address %q", address)
		}
		proxy = u
	}

	i.mu.Lock()
	i.proxy = proxy
	i.mu.Unlock()

	logger := config.GetLogger()
	logger.Info().Bool("enabled", proxy != nil).Str("proxy", address).Msg("Browser proxy updated")
	return nil
}

// Proxy returns the proxy in use, or "" when requests go direct
func (i *Inspector) Proxy() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.proxy == nil {
		return ""
	}
	return i.proxy.String()
}

func (i *Inspector) proxyFor(*http.Request) (*url.URL, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.proxy, nil
}

// Inspect loads pageURL and returns its title and every m3u8 link found in element
// attributes or inline scripts, in document order without duplicates.
func (i *Inspector) Inspect(ctx context.Context, pageURL string) (*models.PageInfo, error) {
	base, err := url.Parse(pageURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("invalid page URL %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", i.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, pageURL)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageSize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	info := extractPage(doc, resp.Request.URL)
	logger := config.GetLogger()
	logger.Debug().Str("url", pageURL).Int("media", len(info.MediaURLs)).Msg("Inspected page")
	return info, nil
}

// extractPage collects the title and media links of a parsed document
func extractPage(doc *goquery.Document, base *url.URL) *models.PageInfo {
	info := &models.PageInfo{
		URL:       base.String(),
		Title:     strings.TrimSpace(doc.Find("title").First().Text()),
		MediaURLs: []string{},
	}
	seen := make(map[string]bool)
	add := func(raw string) {
		ref, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			info.MediaURLs = append(info.MediaURLs, abs)
		}
	}

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range mediaAttributes {
			if v, ok := s.Attr(attr); ok && isMediaLink(v) {
				add(v)
			}
		}
		if goquery.NodeName(s) == "script" {
			for _, m := range mediaURLPattern.FindAllString(s.Text(), -1) {
				add(m)
			}
		}
	})
	return info
}

func isMediaLink(v string) bool {
	path := v
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return strings.HasSuffix(strings.ToLower(path), ".m3u8")
}

// FormFromPage builds a new-source form for mediaURL found on page, carrying the page
// as Origin and Referer headers.
func FormFromPage(page *models.PageInfo, mediaURL string) models.SourceForm {
	form := models.SourceForm{Title: page.Title, URL: mediaURL}
	if u, err := url.Parse(page.URL); err == nil && u.Host != "" {
		form.Headers = fmt.Sprintf("Origin: %s://%s\nReferer: %s", u.Scheme, u.Host, page.URL)
	}
	return form
}

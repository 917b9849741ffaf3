package fetcher

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTTPDoer is the subset of *http.Client this adapter needs, narrowed so
// tests can substitute a fake transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebFetcher implements the Page and FetchFeed surface of ContentFetcher
// for plain web sources: it strips fetched HTML to a markdown rendering
// via golang.org/x/net/html tree traversal, then renders that markdown
// back to a clean HTML fragment with goldmark for the admin investigation
// sandbox's display needs (section 4.10). Social/search/video content
// types are Unsupported here;
// those belong to platform-specific adapters implementing the rest of
// ContentFetcher.
type WebFetcher struct {
	client HTTPDoer
}

// NewWebFetcher builds a WebFetcher over an HTTP client.
func NewWebFetcher(client HTTPDoer) *WebFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebFetcher{client: client}
}

func (f *WebFetcher) Page(ctx context.Context, pageURL string, opts Options) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("fetcher: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetcher: fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Page{}, fmt.Errorf("fetcher: %s returned status %d", pageURL, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("fetcher: read body: %w", err)
	}
	return renderPage(pageURL, body)
}

func (f *WebFetcher) FetchFeed(ctx context.Context, url string, opts Options) (Feed, error) {
	return Feed{}, ErrUnsupported
}
func (f *WebFetcher) Posts(ctx context.Context, url string, limit int, opts Options) ([]Post, error) {
	return nil, ErrUnsupported
}
func (f *WebFetcher) Stories(ctx context.Context, url string, opts Options) ([]Story, error) {
	return nil, ErrUnsupported
}
func (f *WebFetcher) ShortVideos(ctx context.Context, url string, limit int, withTextAnalysis bool, opts Options) ([]Video, error) {
	return nil, ErrUnsupported
}
func (f *WebFetcher) LongVideos(ctx context.Context, url string, limit int, withTextAnalysis bool, opts Options) ([]Video, error) {
	return nil, ErrUnsupported
}
func (f *WebFetcher) Search(ctx context.Context, query string, opts Options) ([]SearchResult, error) {
	return nil, ErrUnsupported
}
func (f *WebFetcher) SearchTopics(ctx context.Context, platform string, topics []string, limit int, opts Options) ([]Post, error) {
	return nil, ErrUnsupported
}
func (f *WebFetcher) File(ctx context.Context, fileURL string, opts Options) (File, error) {
	return File{}, ErrUnsupported
}

// renderPage parses raw HTML, walks the DOM to produce markdown and
// outbound links, and renders the markdown back to HTML with goldmark
// for the archive's display copy.
func renderPage(pageURL string, body []byte) (Page, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("fetcher: parse html: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("fetcher: parse page url: %w", err)
	}

	var md strings.Builder
	links := map[string]struct{}{}
	walk(doc, &md, base, links)

	markdown := strings.TrimSpace(md.String())

	var rendered bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &rendered); err != nil {
		return Page{}, fmt.Errorf("fetcher: render markdown: %w", err)
	}

	sum := sha256.Sum256(body)
	return Page{
		URL:           pageURL,
		Markdown:      markdown,
		RenderedHTML:  rendered.String(),
		OutboundLinks: sortedKeys(links),
		ContentHash:   hex.EncodeToString(sum[:]),
		FetchedAt:     time.Now(),
	}, nil
}

// walk traverses the DOM, emitting a markdown line per heading/paragraph/
// list item and collecting absolute outbound link URLs. It skips
// <script>/<style>/<nav>/<footer> subtrees entirely since they carry no
// extractable civic content.
func walk(n *html.Node, md *strings.Builder, base *url.URL, links map[string]struct{}) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Nav, atom.Footer, atom.Head:
			return
		case atom.A:
			if href := attr(n, "href"); href != "" {
				if abs, err := base.Parse(href); err == nil {
					links[abs.String()] = struct{}{}
				}
			}
		}
	}

	switch {
	case n.Type == html.ElementNode && isHeading(n.DataAtom):
		text := strings.TrimSpace(textContent(n))
		if text != "" {
			md.WriteString(strings.Repeat("#", headingLevel(n.DataAtom)) + " " + text + "\n\n")
		}
		return
	case n.Type == html.ElementNode && n.DataAtom == atom.P:
		text := strings.TrimSpace(textContent(n))
		if text != "" {
			md.WriteString(text + "\n\n")
		}
		return
	case n.Type == html.ElementNode && n.DataAtom == atom.Li:
		text := strings.TrimSpace(textContent(n))
		if text != "" {
			md.WriteString("- " + text + "\n")
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, md, base, links)
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isHeading(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	default:
		return 6
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

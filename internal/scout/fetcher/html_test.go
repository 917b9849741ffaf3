package fetcher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoer struct {
	resp *http.Response
	err  error
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	return f.resp, f.err
}

func newHTMLResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestWebFetcher_Page_RendersMarkdownAndLinks(t *testing.T) {
	body := `<html><head><title>ignored</title></head><body>
		<h1>Block association meeting</h1>
		<p>The meeting covers rezoning at the corner lot.</p>
		<ul><li>Bring your questions</li><li>Open to all residents</li></ul>
		<a href="/agenda.pdf">agenda</a>
		<a href="https://other.example/page">other</a>
		<nav><a href="/menu">skip me</a></nav>
	</body></html>`

	f := NewWebFetcher(&fakeDoer{resp: newHTMLResponse(200, body)})
	page, err := f.Page(context.Background(), "https://civic.example/meeting", Options{})
	require.NoError(t, err)

	assert.Contains(t, page.Markdown, "# Block association meeting")
	assert.Contains(t, page.Markdown, "rezoning at the corner lot")
	assert.Contains(t, page.Markdown, "- Bring your questions")
	assert.NotContains(t, page.Markdown, "ignored")
	assert.Contains(t, page.RenderedHTML, "<h1>")
	assert.Contains(t, page.OutboundLinks, "https://civic.example/agenda.pdf")
	assert.Contains(t, page.OutboundLinks, "https://other.example/page")
	assert.NotContains(t, page.OutboundLinks, "https://civic.example/menu")
	assert.NotEmpty(t, page.ContentHash)
}

func TestWebFetcher_Page_ErrorsOnHTTPFailureStatus(t *testing.T) {
	f := NewWebFetcher(&fakeDoer{resp: newHTMLResponse(503, "unavailable")})
	_, err := f.Page(context.Background(), "https://civic.example/down", Options{})
	require.Error(t, err)
}

func TestWebFetcher_Page_WrapsTransportError(t *testing.T) {
	f := NewWebFetcher(&fakeDoer{err: errors.New("dial tcp: timeout")})
	_, err := f.Page(context.Background(), "https://civic.example/x", Options{})
	require.Error(t, err)
}

func TestWebFetcher_UnsupportedContentTypesReturnErrUnsupported(t *testing.T) {
	f := NewWebFetcher(nil)
	ctx := context.Background()

	_, err := f.FetchFeed(ctx, "https://x", Options{})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = f.Posts(ctx, "https://x", 10, Options{})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = f.Search(ctx, "zoning board", Options{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestRenderPage_SameBodyProducesSameContentHash(t *testing.T) {
	body := []byte("<html><body><p>stable content</p></body></html>")
	a, err := renderPage("https://civic.example/a", body)
	require.NoError(t, err)
	b, err := renderPage("https://civic.example/a", bytes.Clone(body))
	require.NoError(t, err)
	assert.Equal(t, a.ContentHash, b.ContentHash)
}

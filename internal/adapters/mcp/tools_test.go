package mcp

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdflens/internal/application"
	"pdflens/internal/application/commands"
	"pdflens/internal/domain"
)

type stubSessions struct {
	res       *commands.SessionResult
	err       error
	lastRegex bool
}

func (s *stubSessions) Search(_ context.Context, _, _ string, regex bool) (*commands.SessionResult, error) {
	s.lastRegex = regex
	return s.res, s.err
}

type stubPages struct{}

func (stubPages) ReadPages(_ context.Context, path string) (*commands.PagesResult, error) {
	if path != "/d/a.pdf" {
		return nil, application.ErrNotFound
	}
	return &commands.PagesResult{
		Document: domain.Document{Path: path, Fingerprint: "fa", PageCount: 2},
		Pages: []commands.PageInfo{
			{Page: 1, Runes: 5, Text: "alpha"},
			{Page: 2, Runes: 0, Text: ""},
		},
	}, nil
}

type stubImages struct{}

func (stubImages) Get(_ context.Context, doc domain.Document, page int) (domain.PageImage, error) {
	if page < 1 || page > doc.NavigablePages() {
		return domain.PageImage{}, domain.ErrPageOutOfRange
	}
	return domain.PageImage{
		Key:    domain.CacheKey{Fingerprint: doc.Fingerprint, Page: page},
		Data:   []byte("\x89PNG fake"),
		Format: "image/png",
	}, nil
}

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "first content is %T", res.Content[0])
	return tc.Text
}

func session() *commands.SessionResult {
	a := domain.Document{Path: "/d/a.pdf", PageCount: 3}
	b := domain.Document{Path: "/d/b.pdf", PageCount: 1}
	return &commands.SessionResult{
		Index: domain.NewSessionIndex([]domain.Entry{
			{Document: a, Matches: []domain.Match{
				{Path: a.Path, Page: 1, Snippet: "gamma one"},
				{Path: a.Path, Page: 3, Snippet: "gamma two"},
			}},
			{Document: b, Matches: []domain.Match{{Path: b.Path, Page: 1, Snippet: "gamma ray"}}},
		}),
		Exclusions: []domain.Exclusion{{Path: "/d/c.pdf", Reason: errors.New("encrypted")}},
	}
}

func TestSearchHandler(t *testing.T) {
	sessions := &stubSessions{res: session()}
	res, err := searchHandler(sessions)(context.Background(), request(map[string]any{
		"query": "gamma",
		"path":  "/d",
		"regex": true,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.True(t, sessions.lastRegex)

	out := text(t, res)
	assert.Contains(t, out, "3 matches in 2 documents")
	assert.Contains(t, out, "/d/a.pdf#page=3  gamma two")
	assert.Contains(t, out, "/d/b.pdf#page=1  gamma ray")
	assert.Contains(t, out, "excluded: /d/c.pdf: encrypted")
}

func TestSearchHandler_Limit(t *testing.T) {
	res, err := searchHandler(&stubSessions{res: session()})(context.Background(), request(map[string]any{
		"query":       "gamma",
		"max_matches": float64(1),
	}))
	require.NoError(t, err)

	out := text(t, res)
	assert.Contains(t, out, "gamma one")
	assert.NotContains(t, out, "gamma two")
	assert.Contains(t, out, "2 more matches not shown")
}

func TestSearchHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		sessions *stubSessions
		args     map[string]any
		want     string
	}{
		{name: "missing query", sessions: &stubSessions{}, args: map[string]any{}, want: "query is required"},
		{name: "backend failure", sessions: &stubSessions{err: errors.New("rga: exit 2")}, args: map[string]any{"query": "x"}, want: "rga: exit 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := searchHandler(tt.sessions)(context.Background(), request(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, text(t, res), tt.want)
		})
	}
}

func TestSearchHandler_NoMatches(t *testing.T) {
	empty := &commands.SessionResult{Index: domain.NewSessionIndex(nil)}
	res, err := searchHandler(&stubSessions{res: empty})(context.Background(), request(map[string]any{"query": "zzz"}))
	require.NoError(t, err)
	assert.Equal(t, "No matches found.", text(t, res))
}

func TestPageTextHandler(t *testing.T) {
	handler := pageTextHandler(stubPages{})

	res, err := handler(context.Background(), request(map[string]any{"file": "/d/a.pdf", "page": float64(1)}))
	require.NoError(t, err)
	assert.Equal(t, "alpha", text(t, res))

	res, err = handler(context.Background(), request(map[string]any{"file": "/d/a.pdf", "page": float64(2)}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "no extractable text")

	res, err = handler(context.Background(), request(map[string]any{"file": "/d/a.pdf", "page": float64(9)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = handler(context.Background(), request(map[string]any{"file": "/d/missing.pdf", "page": float64(1)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRenderPageHandler(t *testing.T) {
	handler := renderPageHandler(stubPages{}, stubImages{})

	res, err := handler(context.Background(), request(map[string]any{"file": "/d/a.pdf", "page": float64(2)}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var img *mcp.ImageContent
	for _, c := range res.Content {
		if ic, ok := c.(mcp.ImageContent); ok {
			img = &ic
		}
	}
	require.NotNil(t, img, "result should carry an image")
	assert.Equal(t, "image/png", img.MIMEType)
	data, err := base64.StdEncoding.DecodeString(img.Data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))

	res, err = handler(context.Background(), request(map[string]any{"file": "/d/a.pdf", "page": float64(3)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestFormatSession_ListsEveryDocumentWithinLimit(t *testing.T) {
	out := FormatSession(session(), 10)
	assert.Equal(t, 2, strings.Count(out, "matches)\n"))
	assert.NotContains(t, out, "not shown")
}

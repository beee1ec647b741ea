package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pdflens/internal/application/commands"
	"pdflens/internal/domain"
	"pdflens/internal/logging"
)

// DefaultMaxMatches bounds the search tool output
const DefaultMaxMatches = 200

// Sessions builds a search session for a query under a root directory
type Sessions interface {
	Search(ctx context.Context, query, root string, regex bool) (*commands.SessionResult, error)
}

// Pages extracts the per-page text of a document
type Pages interface {
	ReadPages(ctx context.Context, path string) (*commands.PagesResult, error)
}

// PageImages returns rendered page images
type PageImages interface {
	Get(ctx context.Context, doc domain.Document, page int) (domain.PageImage, error)
}

// RegisterTools adds the PDF search tools to the MCP server.
func RegisterTools(s *server.MCPServer, sessions Sessions, pages Pages, images PageImages) {
	s.AddTool(pingTool(), pingHandler())
	s.AddTool(searchTool(), searchHandler(sessions))
	s.AddTool(pageTextTool(), pageTextHandler(pages))
	s.AddTool(renderPageTool(), renderPageHandler(pages, images))
}

// --- ping ---

func pingTool() mcp.Tool {
	return mcp.NewTool("ping",
		mcp.WithDescription("Health check, returns pong"),
	)
}

func pingHandler() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("pong"), nil
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Search the PDFs under a directory. Returns the matching pages grouped by document, as file#page=N with a snippet."),
		mcp.WithString("query",
			mcp.Description("Text to search for (case-insensitive)"),
			mcp.Required(),
		),
		mcp.WithString("path",
			mcp.Description("Directory or PDF file to search. Defaults to the current directory."),
		),
		mcp.WithBoolean("regex",
			mcp.Description("Treat the query as a regular expression"),
		),
		mcp.WithNumber("max_matches",
			mcp.Description(fmt.Sprintf("Maximum number of matches to list (default %d)", DefaultMaxMatches)),
		),
	)
}

func searchHandler(sessions Sessions) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if strings.TrimSpace(query) == "" {
			return toolError(fmt.Errorf("query is required"))
		}
		root := req.GetString("path", ".")
		limit := req.GetInt("max_matches", DefaultMaxMatches)
		if limit <= 0 {
			limit = DefaultMaxMatches
		}

		res, err := sessions.Search(ctx, query, root, req.GetBool("regex", false))
		if err != nil {
			return toolError(err)
		}
		logging.For(logging.CompMCP).Info("search", "query", query, "root", root, "matches", res.Index.TotalMatches())

		if res.Index.IsEmpty() {
			return mcp.NewToolResultText("No matches found."), nil
		}
		return mcp.NewToolResultText(FormatSession(res, limit)), nil
	}
}

// FormatSession lists at most limit matches grouped by document
func FormatSession(res *commands.SessionResult, limit int) string {
	var sb strings.Builder
	idx := res.Index
	fmt.Fprintf(&sb, "%d matches in %d documents\n", idx.TotalMatches(), idx.Len())

	shown := 0
	for d := 0; d < idx.Len() && shown < limit; d++ {
		entry := idx.Entry(d)
		fmt.Fprintf(&sb, "\n%s (%d pages, %d matches)\n", entry.Document.Path, entry.Document.PageCount, len(entry.Matches))
		for _, m := range entry.Matches {
			if shown == limit {
				break
			}
			fmt.Fprintf(&sb, "  %s  %s\n", m.Location(), m.Snippet)
			shown++
		}
	}
	if rest := idx.TotalMatches() - shown; rest > 0 {
		fmt.Fprintf(&sb, "\n... %d more matches not shown\n", rest)
	}
	for _, ex := range res.Exclusions {
		fmt.Fprintf(&sb, "excluded: %s\n", ex)
	}
	return sb.String()
}

// --- page_text ---

func pageTextTool() mcp.Tool {
	return mcp.NewTool("page_text",
		mcp.WithDescription("Return the extracted text of one page of a PDF."),
		mcp.WithString("file",
			mcp.Description("Path to the PDF"),
			mcp.Required(),
		),
		mcp.WithNumber("page",
			mcp.Description("1-based page number"),
			mcp.Required(),
		),
	)
}

func pageTextHandler(pages Pages) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file := req.GetString("file", "")
		if file == "" {
			return toolError(fmt.Errorf("file is required"))
		}

		res, err := pages.ReadPages(ctx, file)
		if err != nil {
			return toolError(err)
		}
		info, err := res.Page(req.GetInt("page", 0))
		if err != nil {
			return toolError(err)
		}
		if info.Text == "" {
			return mcp.NewToolResultText("(page has no extractable text)"), nil
		}
		return mcp.NewToolResultText(info.Text), nil
	}
}

// --- render_page ---

func renderPageTool() mcp.Tool {
	return mcp.NewTool("render_page",
		mcp.WithDescription("Render one page of a PDF as an image."),
		mcp.WithString("file",
			mcp.Description("Path to the PDF"),
			mcp.Required(),
		),
		mcp.WithNumber("page",
			mcp.Description("1-based page number"),
			mcp.Required(),
		),
	)
}

func renderPageHandler(pages Pages, images PageImages) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file := req.GetString("file", "")
		if file == "" {
			return toolError(fmt.Errorf("file is required"))
		}
		page := req.GetInt("page", 0)

		res, err := pages.ReadPages(ctx, file)
		if err != nil {
			return toolError(err)
		}
		img, err := images.Get(ctx, res.Document, page)
		if err != nil {
			return toolError(err)
		}

		loc := domain.Match{Path: res.Document.Path, Page: page}.Location()
		return mcp.NewToolResultImage(loc, base64.StdEncoding.EncodeToString(img.Data), img.Format), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

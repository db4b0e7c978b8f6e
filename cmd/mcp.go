package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"wikirag/internal/app"
	"wikirag/internal/index"
	"wikirag/internal/rag"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing corpus search and QA tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	s := mcpserver.NewMCPServer("wikirag", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(searchArticlesTool(), makeSearchHandler(a))
	s.AddTool(askQuestionTool(), makeAskHandler(a, cfg.Temperature))
	s.AddTool(corpusStatsTool(), makeStatsHandler(a, cfg.Index.Collection))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func searchArticlesTool() mcp.Tool {
	return mcp.NewTool("search_articles",
		mcp.WithDescription("Semantically search the indexed article corpus. Returns the closest articles with their metadata."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language query to search the corpus"),
		),
		mcp.WithNumber("n_results",
			mcp.Description("Maximum number of articles to return (default 3)"),
		),
		mcp.WithString("category",
			mcp.Description("Only return articles whose categories contain this text"),
		),
	)
}

func askQuestionTool() mcp.Tool {
	return mcp.NewTool("ask_question",
		mcp.WithDescription("Answer a question grounded in retrieved articles from the corpus."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithNumber("n_results",
			mcp.Description("Number of articles to ground the answer in (default 3)"),
		),
	)
}

func corpusStatsTool() mcp.Tool {
	return mcp.NewTool("corpus_stats",
		mcp.WithDescription("Get the number of indexed documents and the collection name."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeSearchHandler(a *app.App) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		n := req.GetInt("n_results", 0)

		var filter *index.Filter
		if cat := req.GetString("category", ""); cat != "" {
			filter = index.Contains("categories", cat)
		}

		results, err := a.Engine.Search(ctx, query, n, filter)
		if err != nil {
			if errors.Is(err, rag.ErrEmptyCorpus) {
				return mcp.NewToolResultText("The index is empty. Load articles before searching."), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		return mcp.NewToolResultText(formatSearchResults(query, results)), nil
	}
}

func makeAskHandler(a *app.App, temperature float32) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := req.GetString("question", "")
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}
		n := req.GetInt("n_results", 0)

		answer, err := a.Engine.GenerateAnswer(ctx, question, n, temperature)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("answer generation failed: %v", err)), nil
		}
		return mcp.NewToolResultText(answer), nil
	}
}

func makeStatsHandler(a *app.App, collection string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		count, err := a.Index.Count(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("count failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Collection %q contains %d documents.", collection, count)), nil
	}
}

// --- Formatting helpers ---

func formatSearchResults(query string, results []index.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for query: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q (%d articles)\n\n", query, len(results))

	for i, r := range results {
		fmt.Fprintf(&sb, "### Result %d: %s\n\n", i+1, r.Metadata["title"])
		fmt.Fprintf(&sb, "**Page ID:** %s  \n**URL:** %s  \n**Similarity:** %.4f\n\n",
			r.Metadata["page_id"], r.Metadata["url"], 1-r.Distance)
		if cats := r.Metadata["categories"]; cats != "" {
			fmt.Fprintf(&sb, "**Categories:** %s\n\n", cats)
		}
		if summary := r.Metadata["summary"]; summary != "" {
			fmt.Fprintf(&sb, "%s\n\n", summary)
		}
	}

	return sb.String()
}

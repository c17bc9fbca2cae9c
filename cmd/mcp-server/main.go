package main

import (
	"context"
	"log"
	"os"

	"github.com/eshaffer321/cmsclient-go/pkg/cms"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	mode := cms.Mode(os.Getenv("CMS_API_MODE"))
	if mode == "" {
		mode = cms.ModeAuto
	}

	// Initialize CMS client, reusing the session cmsctl stored
	client, err := cms.NewClient(&cms.ClientOptions{
		Mode:           mode,
		Environment:    cms.Environment(os.Getenv("CMS_APP_ENV")),
		BaseURL:        os.Getenv("CMS_API_URL"),
		SessionStorage: cms.NewFileStorage(os.Getenv("CMS_SESSION_FILE_PATH")),
	})
	if err != nil {
		log.Fatalf("failed to initialize CMS client: %v", err)
	}
	defer client.Close()

	// Credentials in the environment take precedence over a stored session
	if username := os.Getenv("CMS_USERNAME"); username != "" {
		resp := client.Login(context.Background(), username, os.Getenv("CMS_PASSWORD"))
		if !resp.Success {
			log.Fatalf("login failed: %s", resp.Error)
		}
	}
	if !client.IsAuthenticated() {
		log.Fatal("not logged in: run `cmsctl login` or set CMS_USERNAME and CMS_PASSWORD")
	}

	impl := &mcp.Implementation{
		Name:    "cms-review",
		Version: "1.0.0",
	}

	server := mcp.NewServer(impl, nil)

	// Register all tools
	registerTools(server, client)

	// Run server over stdio transport (for Claude Desktop)
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func registerTools(server *mcp.Server, client *cms.Client) {
	tools := &cmsTools{client: client}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_articles",
		Description: "List articles with optional status, category, author and text filters. Returns a page of articles with their status and timestamps.",
	}, tools.ListArticles)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_article",
		Description: "Get a single article by ID, including its full content and revision history.",
	}, tools.GetArticle)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_pending_approvals",
		Description: "List revisions waiting for an approver, oldest submission information included.",
	}, tools.ListPendingApprovals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "approve_revision",
		Description: "Approve a pending revision. Its content is published to the article.",
	}, tools.ApproveRevision)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reject_revision",
		Description: "Reject a pending revision with a reason the author will see.",
	}, tools.RejectRevision)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Full-text search over articles and revisions. Each result says whether it is an article or a revision.",
	}, tools.Search)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// crawlRequest mirrors the pagegrab API request body.
type crawlRequest struct {
	URL          string `json:"url"`
	Keyword      string `json:"keyword,omitempty"`
	Async        bool   `json:"async,omitempty"`
	Scroll       bool   `json:"scroll,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`
	Stealth      bool   `json:"stealth,omitempty"`
	BlockAds     bool   `json:"blockAds,omitempty"`
}

// mediaItem is an image, video or audio entry in a /crawl response.
type mediaItem struct {
	SourceURL string `json:"sourceUrl"`
	Origin    string `json:"origin,omitempty"`
}

// textItem is a text block in a /crawl or /crawlHtml response.
type textItem struct {
	Text    string `json:"text"`
	TagName string `json:"tag"`
	ID      string `json:"id"`
	Class   string `json:"class"`
}

// crawlResponse mirrors both crawl endpoints. Results arrive under
// "images" on /crawl and under "html" on /crawlHtml.
type crawlResponse struct {
	Images  []json.RawMessage `json:"images"`
	HTML    []json.RawMessage `json:"html"`
	Error   string            `json:"error"`
	Details string            `json:"details"`
}

func main() {
	apiURL := os.Getenv("PAGEGRAB_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}
	apiKey := os.Getenv("PAGEGRAB_API_KEY")

	s := server.NewMCPServer(
		"pagegrab",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	crawlResourcesTool := mcp.NewTool("crawl_resources",
		mcp.WithDescription("Open a web page in a headless browser and list the image, video or audio URLs it embeds. Only absolute http(s) sources are returned."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to crawl"),
		),
		mcp.WithString("resource_type",
			mcp.Description("Kind of resource to extract (default: 'image')"),
			mcp.Enum("image", "video", "audio"),
		),
		mcp.WithString("keyword",
			mcp.Description("Only return sources whose URL contains this text (case-insensitive)"),
		),
		mcp.WithBoolean("scroll",
			mcp.Description("Scroll the page first to trigger lazy-loaded content"),
		),
		mcp.WithBoolean("wait_network_idle",
			mcp.Description("Wait for network idle instead of DOM ready before extracting"),
		),
	)
	s.AddTool(crawlResourcesTool, handleCrawlResources(apiURL, apiKey))

	crawlTextTool := mcp.NewTool("crawl_text",
		mcp.WithDescription("Open a web page in a headless browser and return its paragraphs, headings and article blocks as text."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to crawl"),
		),
		mcp.WithString("keyword",
			mcp.Description("Only return blocks containing this text (case-insensitive)"),
		),
		mcp.WithBoolean("scroll",
			mcp.Description("Scroll the page first to trigger lazy-loaded content"),
		),
	)
	s.AddTool(crawlTextTool, handleCrawlText(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the pagegrab API and returns the status
// code and response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// crawl posts reqBody to path and decodes the reply. A 404 is an empty
// result, not a failure.
func crawl(ctx context.Context, client *http.Client, apiURL, apiKey, path string, reqBody crawlRequest) (*crawlResponse, error) {
	status, body, err := apiPost(ctx, client, apiURL, apiKey, path, reqBody)
	if err != nil {
		return nil, err
	}

	var resp crawlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response (HTTP %d): %w", status, err)
	}
	if status != http.StatusOK && status != http.StatusNotFound {
		msg := resp.Error
		if msg == "" {
			msg = http.StatusText(status)
		}
		return nil, fmt.Errorf("[HTTP %d] %s", status, msg)
	}
	return &resp, nil
}

func handleCrawlResources(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		kind := request.GetString("resource_type", "image")

		resp, err := crawl(ctx, client, apiURL, apiKey, "/crawl", crawlRequest{
			URL:          url,
			Keyword:      request.GetString("keyword", ""),
			Async:        request.GetBool("wait_network_idle", false),
			Scroll:       request.GetBool("scroll", false),
			ResourceType: kind,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(resp.Images) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No %s resources found on %s", kind, url)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Found %d %s resources on %s\n\n", len(resp.Images), kind, url)
		for _, raw := range resp.Images {
			var item mediaItem
			if err := json.Unmarshal(raw, &item); err != nil {
				continue
			}
			if item.Origin != "" {
				fmt.Fprintf(&sb, "- %s (%s)\n", item.SourceURL, item.Origin)
			} else {
				fmt.Fprintf(&sb, "- %s\n", item.SourceURL)
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleCrawlText(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		resp, err := crawl(ctx, client, apiURL, apiKey, "/crawlHtml", crawlRequest{
			URL:     url,
			Keyword: request.GetString("keyword", ""),
			Scroll:  request.GetBool("scroll", false),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(resp.HTML) == 0 {
			return mcp.NewToolResultText("No text content found on " + url), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Source: %s\n\n", url)
		for _, raw := range resp.HTML {
			var item textItem
			if err := json.Unmarshal(raw, &item); err != nil {
				continue
			}
			fmt.Fprintf(&sb, "[%s] %s\n\n", item.TagName, item.Text)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

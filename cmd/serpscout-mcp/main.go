package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// webpageRequest mirrors the serpscout webpage API request model.
type webpageRequest struct {
	URL          string `json:"url"`
	OutputFormat string `json:"output_format,omitempty"`
	ExtractMode  string `json:"extract_mode,omitempty"`
	CSSSelector  string `json:"css_selector,omitempty"`
}

// searchRequest mirrors the serpscout search API request model.
type searchRequest struct {
	Keyword      string `json:"keyword"`
	OutputFormat string `json:"output_format,omitempty"`
}

// scrapeResponse mirrors the serpscout API response model.
type scrapeResponse struct {
	Success     bool   `json:"success"`
	Title       string `json:"title"`
	SourceURL   string `json:"source_url"`
	ResultStats string `json:"result_stats"`
	Content     string `json:"content"`
	Error       *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("SERPSCOUT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SERPSCOUT_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "SERPSCOUT_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"serpscout",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	scrapeWebpageTool := mcp.NewTool("scrape_webpage",
		mcp.WithDescription("Scrape a web page with a headless browser and return its content as a structured document (text/html/markdown). Respects robots.txt and paces its requests."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format: 'text' (default), 'html', or 'markdown'"),
			mcp.Enum("text", "html", "markdown"),
		),
		mcp.WithString("extract_mode",
			mcp.Description("Extraction mode: 'structured' (default, whole page) or 'article' (main article body only)"),
			mcp.Enum("structured", "article"),
		),
		mcp.WithString("css_selector",
			mcp.Description("Optional CSS selector to scope extraction to matching elements"),
		),
	)
	s.AddTool(scrapeWebpageTool, handleScrapeWebpage(apiURL, apiKey))

	scrapeSearchTool := mcp.NewTool("scrape_search",
		mcp.WithDescription("Run a web search for a keyword and return the results page as a structured document. Slow: navigates the engine like a person and may wait out a CAPTCHA."),
		mcp.WithString("keyword",
			mcp.Required(),
			mcp.Description("The search query"),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format: 'text' (default), 'html', or 'markdown'"),
			mcp.Enum("text", "html", "markdown"),
		),
	)
	s.AddTool(scrapeSearchTool, handleScrapeSearch(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the serpscout API and parses the response.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) (*scrapeResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &parsed, nil
}

// formatResult renders the API response as tool output text.
func formatResult(resp *scrapeResponse) *mcp.CallToolResult {
	if !resp.Success {
		errMsg := "scrape failed"
		if resp.Error != nil {
			errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
		}
		return mcp.NewToolResultError(errMsg)
	}

	result := fmt.Sprintf("Title: %s\nSource: %s\n", resp.Title, resp.SourceURL)
	if resp.ResultStats != "" {
		result += "Stats: " + resp.ResultStats + "\n"
	}
	result += "\n" + resp.Content
	return mcp.NewToolResultText(result)
}

func handleScrapeWebpage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		resp, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/scrape/webpage", webpageRequest{
			URL:          url,
			OutputFormat: request.GetString("output_format", ""),
			ExtractMode:  request.GetString("extract_mode", ""),
			CSSSelector:  request.GetString("css_selector", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return formatResult(resp), nil
	}
}

func handleScrapeSearch(apiURL, apiKey string) server.ToolHandlerFunc {
	// Generous timeout: a search may sit behind a CAPTCHA wait.
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword, err := request.RequireString("keyword")
		if err != nil {
			return mcp.NewToolResultError("keyword is required"), nil
		}

		resp, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/scrape/search", searchRequest{
			Keyword:      keyword,
			OutputFormat: request.GetString("output_format", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return formatResult(resp), nil
	}
}

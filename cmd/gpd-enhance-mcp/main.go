package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// apiError mirrors the API error envelope.
type apiError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// fields mirrors models.ExtractedFields.
type fields struct {
	PageTitle       string `json:"page_title"`
	FirstH1         string `json:"first_h1"`
	MetaDescription string `json:"meta_description"`
}

// insightsResponse mirrors the insights API response.
type insightsResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    *fields `json:"data"`
	Saved   bool    `json:"saved"`
	Code    string  `json:"code"`
}

// sourceResult mirrors one entry of the sources API results.
type sourceResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// client talks to a running gpd-enhance API.
type client struct {
	http   *http.Client
	apiURL string
	apiKey string
}

func main() {
	apiURL := os.Getenv("GPD_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("GPD_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "GPD_API_KEY is required")
		os.Exit(1)
	}

	c := &client{
		http:   &http.Client{Timeout: 120 * time.Second},
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
	}

	s := server.NewMCPServer(
		"gpd-enhance",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	insightsTool := mcp.NewTool("scrape_listing_insights",
		mcp.WithDescription("Scrape a directory listing's primary website for its page title, first H1 and meta description, and save them on the listing."),
		mcp.WithNumber("listing_id",
			mcp.Required(),
			mcp.Description("ID of the gd_place or business listing"),
		),
	)
	s.AddTool(insightsTool, handleScrapeInsights(c))

	sourcesTool := mcp.NewTool("scrape_listing_sources",
		mcp.WithDescription("Run the listing's data sources in order and report each one's outcome. Without a source, all sources run."),
		mcp.WithNumber("listing_id",
			mcp.Required(),
			mcp.Description("ID of the gd_place or business listing"),
		),
		mcp.WithString("source",
			mcp.Description("Run only this source"),
			mcp.Enum("primary_website", "google_places", "padi", "ssi", "facebook", "google_search_top10"),
		),
	)
	s.AddTool(sourcesTool, handleScrapeSources(c))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func (c *client) do(req *http.Request) ([]byte, int, error) {
	req.Header.Set("X-API-Key", c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var e apiError
		if json.Unmarshal(body, &e) == nil && e.Error != nil {
			return nil, resp.StatusCode, fmt.Errorf("[%s] %s", e.Error.Code, e.Error.Message)
		}
		return nil, resp.StatusCode, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return body, resp.StatusCode, nil
}

// nonce fetches an action token for the listing.
func (c *client) nonce(ctx context.Context, id int64, action string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/listings/%d/nonce?action=%s", c.apiURL, id, url.QueryEscape(action))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	body, _, err := c.do(req)
	if err != nil {
		return "", err
	}

	var resp struct {
		Nonce string `json:"nonce"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse nonce response: %w", err)
	}
	return resp.Nonce, nil
}

// postForm sends form to path with a fresh token for action.
func (c *client) postForm(ctx context.Context, path, action string, id int64, form url.Values) ([]byte, error) {
	token, err := c.nonce(ctx, id, action)
	if err != nil {
		return nil, err
	}
	form.Set("post_id", strconv.FormatInt(id, 10))
	form.Set("_ajax_nonce", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, _, err := c.do(req)
	return body, err
}

func handleScrapeInsights(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("listing_id")
		if err != nil {
			return mcp.NewToolResultError("listing_id is required"), nil
		}

		body, err := c.postForm(ctx, "/api/v1/scrape/insights", "scrape_insights", int64(id), url.Values{})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scrape request failed: %v", err)), nil
		}

		var resp insightsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success || resp.Data == nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", resp.Code, resp.Message)), nil
		}

		var sb strings.Builder
		sb.WriteString(resp.Message + "\n\n")
		fmt.Fprintf(&sb, "Page title: %s\n", resp.Data.PageTitle)
		fmt.Fprintf(&sb, "First H1: %s\n", resp.Data.FirstH1)
		fmt.Fprintf(&sb, "Meta description: %s\n", resp.Data.MetaDescription)
		if !resp.Saved {
			sb.WriteString("\nNothing was found, stored values were left unchanged.\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleScrapeSources(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireInt("listing_id")
		if err != nil {
			return mcp.NewToolResultError("listing_id is required"), nil
		}

		form := url.Values{}
		if source := request.GetString("source", ""); source != "" {
			form.Set("source", source)
		}

		body, err := c.postForm(ctx, "/api/v1/scrape/sources", "scrape_all_sources", int64(id), form)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scrape request failed: %v", err)), nil
		}

		var resp struct {
			Success bool            `json:"success"`
			Message string          `json:"message"`
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		lines, err := formatResults(resp.Results)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse results: %v", err)), nil
		}
		return mcp.NewToolResultText(resp.Message + "\n\n" + lines), nil
	}
}

// formatResults renders the results object one source per line, keeping
// the order the server ran them in.
func formatResults(raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	if _, err := dec.Token(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		var r sourceResult
		if err := dec.Decode(&r); err != nil {
			return "", err
		}
		status := "ok"
		if !r.Success {
			status = "FAILED"
			if r.Code != "" {
				status += " [" + r.Code + "]"
			}
		}
		fmt.Fprintf(&sb, "%s: %s: %s\n", tok, status, r.Message)
	}
	return sb.String(), nil
}

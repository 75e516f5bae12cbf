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

// scrapeRequest mirrors the distill API request model.
type scrapeRequest struct {
	URL     string `json:"url"`
	Timeout int    `json:"timeout,omitempty"`
}

// scrapeResponse mirrors the distill API response model.
type scrapeResponse struct {
	Success  bool   `json:"success"`
	Markdown string `json:"markdown"`
	Images   []struct {
		Src string `json:"src"`
		Alt string `json:"alt"`
	} `json:"images"`
	Title         string `json:"title"`
	SourceURL     string `json:"source_url"`
	TokenEstimate int    `json:"token_estimate"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("DISTILL_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("DISTILL_API_KEY")

	s := server.NewMCPServer(
		"distill",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	scrapeURLTool := mcp.NewTool("scrape_url",
		mcp.WithDescription("Scrape a web page through the reader extraction service and return its content as markdown, plus the page title and relevant image URLs."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Maximum seconds for the whole scrape, including rate-limit backoff (default: 30, max: 120)"),
		),
	)

	s.AddTool(scrapeURLTool, handleScrapeURL(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleScrapeURL(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		timeout := 0
		if v, ok := request.GetArguments()["timeout"]; ok {
			if f, ok := v.(float64); ok {
				timeout = int(f)
			}
		}

		body, err := json.Marshal(scrapeRequest{URL: url, Timeout: timeout})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/scrape", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var scrapeResp scrapeResponse
		if err := json.Unmarshal(respBody, &scrapeResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !scrapeResp.Success {
			errMsg := "scrape failed"
			if scrapeResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", scrapeResp.Error.Code, scrapeResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Title: %s\nSource: %s\n\n", scrapeResp.Title, scrapeResp.SourceURL)
		sb.WriteString(scrapeResp.Markdown)

		if len(scrapeResp.Images) > 0 {
			sb.WriteString("\n\n---\nImages:\n")
			for _, img := range scrapeResp.Images {
				fmt.Fprintf(&sb, "- %s", img.Src)
				if img.Alt != "" {
					fmt.Fprintf(&sb, " (%s)", img.Alt)
				}
				sb.WriteByte('\n')
			}
		}
		fmt.Fprintf(&sb, "\n---\nTokens: %d", scrapeResp.TokenEstimate)

		return mcp.NewToolResultText(sb.String()), nil
	}
}

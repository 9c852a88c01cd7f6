package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nutriportions/utils"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxAnalyzedItems caps how many items one photo can yield.
const MaxAnalyzedItems = 6

// ItemEstimate is one food an analyzer found in a photo.
type ItemEstimate struct {
	Name           string               `json:"name"`
	Quantity       string               `json:"quantity,omitempty"`
	Grams          float64              `json:"grams"`
	Calories       float64              `json:"calories"`
	ProteinG       float64              `json:"proteinG"`
	CarbsG         float64              `json:"carbsG"`
	FatsG          float64              `json:"fatsG"`
	Portions       *utils.MacroPortions `json:"portions,omitempty"`
	Category       string               `json:"category,omitempty"`
	CategoryImage  string               `json:"categoryImage,omitempty"`
	FoundInCatalog bool                 `json:"foundInCatalog"`
}

// Analyzer turns a meal photo into item estimates. raw is the analyzer's
// own response, kept for auditing.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, img *utils.DecodedImage) (items []ItemEstimate, raw []byte, err error)
}

// HTTPAnalyzer calls an inference endpoint that accepts a base64 image and
// answers with {"items": [...]}.
type HTTPAnalyzer struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPAnalyzer(url, apiKey string, timeout time.Duration) *HTTPAnalyzer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPAnalyzer{url: url, apiKey: apiKey, client: &http.Client{Timeout: timeout}}
}

func (a *HTTPAnalyzer) Name() string { return "http" }

type analyzeRequest struct {
	Image    string `json:"image"`
	MimeType string `json:"mime_type"`
}

type analyzeResponse struct {
	Items []ItemEstimate `json:"items"`
	Error string         `json:"error"`
}

func (a *HTTPAnalyzer) Analyze(ctx context.Context, img *utils.DecodedImage) ([]ItemEstimate, []byte, error) {
	body, err := json.Marshal(analyzeRequest{
		Image:    base64.StdEncoding.EncodeToString(img.Data),
		MimeType: img.ContentType,
	})
	if err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("analyze request error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read analyze response error: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		var e analyzeResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return nil, raw, fmt.Errorf("analyze api error (%d): %s", resp.StatusCode, e.Error)
		}
		return nil, raw, fmt.Errorf("analyze api error (%d): %s", resp.StatusCode, preview(raw))
	}

	var out analyzeResponse
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &out.Items)
	} else {
		err = json.Unmarshal(trimmed, &out)
	}
	if err != nil {
		return nil, raw, fmt.Errorf("decode analyze response error: %v | body: %s", err, preview(raw))
	}
	return out.Items, raw, nil
}

func preview(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

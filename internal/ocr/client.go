// Package ocr is the client for the external name-extraction oracle. It sends
// meeting screenshots to the Gemini generateContent API and returns the list
// of participant names the model read out of them. One call is one finite,
// non-restartable extraction; there is no streaming and no built-in retry.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/config"
)

var (
	// ErrUnavailable means the oracle could not be reached or refused the
	// call (network failure, rate limit, non-2xx). The operator re-triggers
	// manually; nothing is persisted on this path.
	ErrUnavailable = errors.New("ocr oracle unavailable")

	// ErrBadPayload means the oracle answered but its output could not be
	// parsed into a name list.
	ErrBadPayload = errors.New("ocr oracle returned unparsable output")
)

const extractPrompt = `This is one or more screenshots from a video meeting (Zoom/Meet/Teams).
Please extract ALL the visible participant names.
Look for names in participant lists, gallery view labels, or chat mentions if they represent attendance.
Return only a JSON array of strings containing the unique names found.
Format: ["Name 1", "Name 2", ...]`

// Image is one screenshot handed to the oracle.
type Image struct {
	MIMEType string
	Data     []byte
}

// Client calls the Gemini REST API.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

// NewClient builds a client from the ocr config section.
func NewClient(cfg config.OCRConfig) *Client {
	return &Client{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// request/response shapes for generateContent

type genPart struct {
	Text       string         `json:"text,omitempty"`
	InlineData *genInlineData `json:"inline_data,omitempty"`
}

type genInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type genContent struct {
	Parts []genPart `json:"parts"`
}

type genRequest struct {
	Contents         []genContent `json:"contents"`
	GenerationConfig struct {
		ResponseMIMEType string `json:"responseMimeType"`
	} `json:"generationConfig"`
}

type genResponse struct {
	Candidates []struct {
		Content genContent `json:"content"`
	} `json:"candidates"`
}

// ExtractNames performs one extraction over the given screenshots. An empty
// result is a successful call (nobody recognized), not an error. The context
// cancels an abandoned in-flight call.
func (c *Client) ExtractNames(ctx context.Context, images []Image) ([]string, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key not configured", ErrUnavailable)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("no images to extract from")
	}

	parts := make([]genPart, 0, len(images)+1)
	for _, img := range images {
		mime := img.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, genPart{
			InlineData: &genInlineData{
				MIMEType: mime,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	parts = append(parts, genPart{Text: extractPrompt})

	var reqBody genRequest
	reqBody.Contents = []genContent{{Parts: parts}}
	reqBody.GenerationConfig.ResponseMIMEType = "application/json"

	payload, err := json.Marshal(&reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var gen genResponse
	if err := json.Unmarshal(body, &gen); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(gen.Candidates) == 0 || len(gen.Candidates[0].Content.Parts) == 0 {
		// model answered with nothing: treat as an empty extraction
		return []string{}, nil
	}

	text := gen.Candidates[0].Content.Parts[0].Text
	names, err := parseNameList(text)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// parseNameList unmarshals the model's JSON array, tolerating markdown code
// fences the model sometimes adds despite the JSON response request.
func parseNameList(text string) ([]string, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return []string{}, nil
	}

	var names []string
	if err := json.Unmarshal([]byte(cleaned), &names); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return names, nil
}

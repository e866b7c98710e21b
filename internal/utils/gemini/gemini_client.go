package gemini

import (
	"SmartCanteen-Backend/internal/utils"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

type Kind string

const (
	KindConfig    Kind = "config"
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindEmpty     Kind = "empty"
	KindMalformed Kind = "malformed"
)

// Error is returned for every failure of the text service. Callers that need
// a fallback only have to check for it with errors.As.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gemini %s error (%d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gemini %s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Malformed wraps a decoding failure of the response text.
func Malformed(err error) error {
	return newError(KindMalformed, err)
}

type (
	Client interface {
		GenerateText(ctx context.Context, prompt string) (string, error)
	}

	Option func(*client)

	client struct {
		apiKey     string
		model      string
		baseURL    string
		httpClient *http.Client
	}
)

func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

func NewClient(apiKey, model string, timeout time.Duration, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, newError(KindConfig, errors.New("GEMINI_API_KEY is not set"))
	}
	if model == "" {
		return nil, newError(KindConfig, errors.New("GEMINI_MODEL is not set"))
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClientFromConfig reads GEMINI_API_KEY, GEMINI_MODEL and GEMINI_TIMEOUT_SECONDS.
func NewClientFromConfig() (Client, error) {
	timeout := 30 * time.Second
	if raw := utils.GetConfig("GEMINI_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, newError(KindConfig, fmt.Errorf("invalid GEMINI_TIMEOUT_SECONDS %q", raw))
		}
		timeout = time.Duration(seconds) * time.Second
	}
	return NewClient(utils.GetConfig("GEMINI_API_KEY"), utils.GetConfig("GEMINI_MODEL"), timeout)
}

func (c *client) GenerateText(ctx context.Context, prompt string) (string, error) {
	geminiURL := fmt.Sprintf("%s/%s:generateContent", c.baseURL, c.model)

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{
						"text": prompt,
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": 0.7,
			"topP":        0.8,
			"topK":        40,
		},
	}

	requestJSON, err := json.Marshal(requestBody)
	if err != nil {
		return "", newError(KindTransport, err)
	}

	geminiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, geminiURL, bytes.NewBuffer(requestJSON))
	if err != nil {
		return "", newError(KindTransport, err)
	}
	geminiReq.Header.Set("Content-Type", "application/json")
	// the key travels in a header so transport errors, which quote the URL, never carry it
	geminiReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(geminiReq)
	if err != nil {
		return "", newError(KindTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &Error{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s - %s", resp.Status, strings.TrimSpace(string(bodyBytes))),
		}
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", newError(KindMalformed, err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", newError(KindEmpty, errors.New("response has no candidates"))
	}

	text := strings.TrimSpace(geminiResp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", newError(KindEmpty, errors.New("response text is empty"))
	}
	return text, nil
}

// StripFences removes a surrounding markdown code block such as ```json ... ```.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx != -1 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// DecodeJSON strips fences and decodes the remaining text into out.
// Any leftover text outside the JSON value makes the response malformed.
func DecodeJSON(text string, out interface{}) error {
	decoder := json.NewDecoder(strings.NewReader(StripFences(text)))
	if err := decoder.Decode(out); err != nil {
		return Malformed(err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return Malformed(errors.New("unexpected trailing content"))
	}
	return nil
}

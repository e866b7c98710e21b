package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateBody(text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]interface{}{{"text": text}},
			}},
		},
	})
	return string(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient("test-key", "test-model", time.Second, WithBaseURL(server.URL))
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingConfig(t *testing.T) {
	_, err := NewClient("", "model", time.Second)
	var gErr *Error
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, KindConfig, gErr.Kind)

	_, err = NewClient("key", "", time.Second)
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, KindConfig, gErr.Kind)
}

func TestGenerateText_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "contents")

		w.Write([]byte(candidateBody("  hello kitchen  ")))
	})

	text, err := c.GenerateText(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello kitchen", text)
}

func TestGenerateText_ErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    Kind
	}{
		{
			name: "non 200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte("quota"))
			},
			kind: KindStatus,
		},
		{
			name: "no candidates",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"candidates":[]}`))
			},
			kind: KindEmpty,
		},
		{
			name: "blank text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(candidateBody("   ")))
			},
			kind: KindEmpty,
		},
		{
			name: "broken envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"candidates":`))
			},
			kind: KindMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.GenerateText(context.Background(), "prompt")

			var gErr *Error
			require.True(t, errors.As(err, &gErr))
			assert.Equal(t, tt.kind, gErr.Kind)
		})
	}
}

func TestGenerateText_Transport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := NewClient("SUPER-SECRET-KEY", "model", time.Second, WithBaseURL(url))
	require.NoError(t, err)

	_, err = c.GenerateText(context.Background(), "prompt")
	var gErr *Error
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, KindTransport, gErr.Kind)
	assert.NotContains(t, err.Error(), "SUPER-SECRET-KEY")
}

func TestGenerateText_StatusErrorHidesKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("denied for " + r.URL.String()))
	})

	_, err := c.GenerateText(context.Background(), "prompt")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "test-key")
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `[{"a":1}]`, StripFences("```json\n[{\"a\":1}]\n```"))
	assert.Equal(t, `[1]`, StripFences("```\n[1]\n```"))
	assert.Equal(t, `{"a":1}`, StripFences(`  {"a":1} `))
}

func TestDecodeJSON(t *testing.T) {
	var out []map[string]int
	require.NoError(t, DecodeJSON("```json\n[{\"a\":1}]\n```", &out))
	assert.Equal(t, 1, out[0]["a"])

	err := DecodeJSON(`[{"a":1}] trailing`, &out)
	var gErr *Error
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, KindMalformed, gErr.Kind)

	for _, trailing := range []string{`[{"a":1}] }`, `[{"a":1}]]`, `{"a":1} {"b":2}`} {
		err = DecodeJSON(trailing, &out)
		require.True(t, errors.As(err, &gErr), trailing)
		assert.Equal(t, KindMalformed, gErr.Kind, trailing)
	}

	err = DecodeJSON("not json", &out)
	require.True(t, errors.As(err, &gErr))
	assert.True(t, strings.Contains(gErr.Error(), "malformed"))
}

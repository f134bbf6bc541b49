package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// maxQueryBytes caps the audio query response size.
	maxQueryBytes = 1 << 20
	// maxAudioBytes caps the synthesized audio size.
	maxAudioBytes = 32 << 20
)

var (
	// errBaseURLRequired is returned when no engine URL is configured.
	errBaseURLRequired = errors.New("synthesis base URL must be provided")
	// ErrBadStatus is returned for non-2xx engine responses.
	ErrBadStatus = errors.New("unexpected http status")
)

// Client talks to the synthesis engine.
type Client struct {
	// baseURL is the engine root without a trailing slash.
	baseURL string
	// speaker is the engine speaker id.
	speaker int
	// httpClient performs the requests.
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a client for the engine at baseURL using speaker.
func NewClient(baseURL string, speaker int, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid synthesis base URL: %w", err)
	}

	c := &Client{
		baseURL:    baseURL,
		speaker:    speaker,
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// AudioQuery requests synthesis parameters for text.
func (c *Client) AudioQuery(ctx context.Context, text string) (*structpb.Struct, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("speaker", strconv.Itoa(c.speaker))

	body, err := c.post(ctx, "/audio_query?"+params.Encode(), nil, maxQueryBytes)
	if err != nil {
		return nil, fmt.Errorf("audio query: %w", err)
	}

	query := new(structpb.Struct)
	if err = protojson.Unmarshal(body, query); err != nil {
		return nil, fmt.Errorf("decode audio query: %w", err)
	}

	return query, nil
}

// Synthesize turns synthesis parameters into a WAV payload.
func (c *Client) Synthesize(ctx context.Context, query *structpb.Struct) ([]byte, error) {
	payload, err := protojson.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode audio query: %w", err)
	}

	params := url.Values{}
	params.Set("speaker", strconv.Itoa(c.speaker))

	audio, err := c.post(ctx, "/synthesis?"+params.Encode(), payload, maxAudioBytes)
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}

	return audio, nil
}

// Speak runs the full chain for text. The second request is issued only
// after the first succeeds.
func (c *Client) Speak(ctx context.Context, text string) ([]byte, error) {
	query, err := c.AudioQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	return c.Synthesize(ctx, query)
}

func (c *Client) post(ctx context.Context, path string, payload []byte, limit int64) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return data, nil
}

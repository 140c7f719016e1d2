package watch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/koscakluka/ema-debate/core/events"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrFeedEnded is returned when the event feed closes before its terminal
// event arrived.
var ErrFeedEnded = errors.New("event feed ended before the debate did")

// Client starts debates on a server and follows their event feed.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Watch starts a debate on topic and passes every received event to
// onEvent until the terminal event. It returns the terminal event.
func (c *Client) Watch(ctx context.Context, topic string, onEvent func(events.Event) error) (events.Event, error) {
	body, err := json.Marshal(map[string]string{"topic": topic})
	if err != nil {
		return nil, fmt.Errorf("failed to encode start request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/start-debate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create start request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to start debate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to start debate: %s", responseMessage(resp))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data:")
		if !ok {
			continue
		}
		event, err := events.Decode([]byte(strings.TrimSpace(data)))
		if err != nil {
			return nil, err
		}
		if onEvent != nil {
			if err := onEvent(event); err != nil {
				return nil, err
			}
		}
		if event.Ended() {
			return event, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event feed: %w", err)
	}
	return nil, ErrFeedEnded
}

// Stop asks the server to stop the active debate. It reports whether a
// debate was stopped.
func (c *Client) Stop(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stop-debate", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create stop request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to stop debate: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("failed to stop debate: %s", responseMessage(resp))
	}
}

func responseMessage(resp *http.Response) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return fmt.Sprintf("%s (%s)", body.Error, resp.Status)
		}
		if body.Message != "" {
			return fmt.Sprintf("%s (%s)", body.Message, resp.Status)
		}
	}
	return resp.Status
}

package gemini

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/koscakluka/ema-debate/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash-latest"

var _ llms.StreamingClient = (*Client)(nil)

// contentStreamer is the part of *genai.Models the client depends on.
type contentStreamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Client streams completions from the Gemini API.
type Client struct {
	models contentStreamer
	model  string
}

type clientOptions struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*clientOptions)

func WithModel(model string) ClientOption {
	return func(o *clientOptions) {
		if model != "" {
			o.model = model
		}
	}
}

func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) { o.baseURL = baseURL }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(o *clientOptions) {
		if httpClient != nil {
			o.httpClient = httpClient
		}
	}
}

func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	options := clientOptions{
		model: DefaultModel,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(&options)
	}

	config := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: options.httpClient,
	}
	if options.baseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: options.baseURL}
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{models: client.Models, model: options.model}, nil
}

func (c *Client) Model() string { return c.model }

func (c *Client) PromptWithStream(_ context.Context, prompt string, opts ...llms.StreamingPromptOption) llms.Stream {
	options := llms.ApplyStreamingOptions(llms.StreamingPromptOptions{}, opts...)

	return &Stream{
		models:   c.models,
		model:    c.model,
		contents: genai.Text(prompt),
		config:   toGenerateContentConfig(options),
	}
}

func toGenerateContentConfig(options llms.StreamingPromptOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if options.Instructions != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: options.Instructions}}}
	}
	if options.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(options.MaxOutputTokens)
	}
	if options.Temperature != nil {
		temperature := float32(*options.Temperature)
		config.Temperature = &temperature
	}
	return config
}

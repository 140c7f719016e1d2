package llms

// StreamingPromptOptions holds everything a provider needs besides the
// prompt text itself.
type StreamingPromptOptions struct {
	// Instructions is the system prompt, sent with the provider's own system
	// or developer role.
	Instructions string
	// MaxOutputTokens caps the generated answer; zero leaves the provider
	// default.
	MaxOutputTokens int
	// Temperature overrides the provider sampling temperature when set.
	Temperature *float64
}

type StreamingPromptOption interface {
	ApplyToStreaming(*StreamingPromptOptions)
}

// PromptOption is a function that can be used to modify the prompt options.
type PromptOption func(*StreamingPromptOptions)

func (f PromptOption) ApplyToStreaming(o *StreamingPromptOptions) { f(o) }

// WithSystemPrompt sets the system prompt. Repeating this option overwrites
// the previous system prompt.
func WithSystemPrompt(prompt string) PromptOption {
	return func(opts *StreamingPromptOptions) {
		opts.Instructions = prompt
	}
}

func WithMaxOutputTokens(tokens int) PromptOption {
	return func(opts *StreamingPromptOptions) {
		opts.MaxOutputTokens = tokens
	}
}

func WithTemperature(temperature float64) PromptOption {
	return func(opts *StreamingPromptOptions) {
		opts.Temperature = &temperature
	}
}

// ApplyStreamingOptions folds opts over base.
func ApplyStreamingOptions(base StreamingPromptOptions, opts ...StreamingPromptOption) StreamingPromptOptions {
	for _, opt := range opts {
		if opt != nil {
			opt.ApplyToStreaming(&base)
		}
	}
	return base
}

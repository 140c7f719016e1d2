package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredential is wrapped by the validation error of every absent
// provider key.
var ErrMissingCredential = errors.New("missing provider credential")

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "debate.max_turns")
	Value   any    // The invalid value
	Message string // Human-readable error description
	// Env names the environment variable that sets Field, if any.
	Env string
	Err error
}

func (e ValidationError) Error() string {
	if e.Env != "" {
		return fmt.Sprintf("%s (%s): %s", e.Field, e.Env, e.Message)
	}
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

func (e ValidationError) Unwrap() error { return e.Err }

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, err := range e {
		errs = append(errs, err)
	}
	return errs
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		errs = append(errs, missingCredential("openai.api_key"))
	}
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		errs = append(errs, missingCredential("gemini.api_key"))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "server.port",
			Value:   c.Server.Port,
			Message: "must be between 1 and 65535",
		})
	}
	if c.OpenAI.Model == "" {
		errs = append(errs, ValidationError{Field: "openai.model", Value: c.OpenAI.Model, Message: "must not be empty"})
	}
	if c.Gemini.Model == "" {
		errs = append(errs, ValidationError{Field: "gemini.model", Value: c.Gemini.Model, Message: "must not be empty"})
	}
	if c.Debate.MaxTurns <= 0 {
		errs = append(errs, ValidationError{
			Field:   "debate.max_turns",
			Value:   c.Debate.MaxTurns,
			Message: "must be positive",
		})
	}
	if c.Debate.MaxWords < 0 {
		errs = append(errs, ValidationError{
			Field:   "debate.max_words",
			Value:   c.Debate.MaxWords,
			Message: "must not be negative (0 = unconstrained)",
		})
	}
	if c.Debate.ProviderTimeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "debate.provider_timeout",
			Value:   c.Debate.ProviderTimeout,
			Message: "must not be negative (0 = disabled)",
		})
	}

	return errs
}

func missingCredential(field string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: "required but not set",
		Env:     envBindings[field],
		Err:     ErrMissingCredential,
	}
}

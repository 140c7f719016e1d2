package llms

import "errors"

var (
	// ErrProviderUnavailable is reported when a provider call fails before
	// any text was produced (network, auth, rejected request).
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrProviderStream is reported when a provider stream breaks after it
	// already produced text.
	ErrProviderStream = errors.New("provider stream failed")

	errNilStream = errors.New("provider returned no stream")
)

type providerError struct {
	kind  error
	cause error
}

func (e *providerError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *providerError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

func unavailable(err error) error {
	if errors.Is(err, ErrProviderUnavailable) || errors.Is(err, ErrProviderStream) {
		return err
	}
	return &providerError{kind: ErrProviderUnavailable, cause: err}
}

func streamFailed(err error) error {
	if errors.Is(err, ErrProviderStream) {
		return err
	}
	return &providerError{kind: ErrProviderStream, cause: err}
}

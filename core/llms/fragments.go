package llms

import (
	"context"
	"iter"
)

// Fragments adapts a provider stream into the plain sequence of non-empty
// text fragments it produces. Usage chunks are dropped.
//
// An error received before the first fragment is reported as
// ErrProviderUnavailable, any later one as ErrProviderStream. The sequence
// ends after the first error.
func Fragments(ctx context.Context, stream Stream) iter.Seq2[string, error] {
	return FragmentsWithUsage(ctx, stream, nil)
}

// FragmentsWithUsage is Fragments that hands every usage chunk to onUsage.
// A nil onUsage drops them.
func FragmentsWithUsage(ctx context.Context, stream Stream, onUsage func(Usage)) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if stream == nil {
			yield("", unavailable(errNilStream))
			return
		}

		started := false
		for chunk, err := range stream.Chunks(ctx) {
			if err != nil {
				if started {
					yield("", streamFailed(err))
				} else {
					yield("", unavailable(err))
				}
				return
			}

			if usage, ok := chunk.(StreamUsageChunk); ok {
				if onUsage != nil {
					onUsage(usage.Usage())
				}
				continue
			}
			content, ok := chunk.(StreamContentChunk)
			if !ok {
				continue
			}
			text := content.Content()
			if text == "" {
				continue
			}

			started = true
			if !yield(text, nil) {
				return
			}
		}
	}
}

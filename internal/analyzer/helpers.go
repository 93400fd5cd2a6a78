package analyzer

import (
	"fmt"
	"strings"
	"time"
)

// retry retries a function up to `attempts` times with backoff.
func retry[T any](attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		wait := time.Duration(500*(i+1)) * time.Millisecond
		time.Sleep(wait)
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// stripFence removes a surrounding markdown code fence from a model
// response. Models often wrap the table in ``` or ```markdown blocks.
func stripFence(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
		// drop a language tag like "markdown" on the opening fence
		if i := strings.Index(clean, "\n"); i >= 0 && !strings.Contains(clean[:i], "|") {
			clean = clean[i+1:]
		}
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")

	return strings.TrimSpace(clean)
}

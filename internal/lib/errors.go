package lib

import "fmt"

// WrapError joins a package-level sentinel with the causal error so callers
// can still errors.Is against the sentinel while retaining the underlying
// detail in the message.
func WrapError(sentinel error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

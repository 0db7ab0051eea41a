package billing

import "fmt"

// FormatNumber renders a sequence value as a human-readable document
// number: prefix, dash, zero-padded counter. Values wider than the padding
// are not truncated.
func FormatNumber(prefix string, next int64, padding int) string {
	return fmt.Sprintf("%s-%0*d", prefix, padding, next)
}

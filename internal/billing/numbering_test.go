package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fieldos/internal/billing"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "QU-0005", billing.FormatNumber("QU", 5, 4))
	assert.Equal(t, "JOB-042", billing.FormatNumber("JOB", 42, 3))
	assert.Equal(t, "INV-12345", billing.FormatNumber("INV", 12345, 4))
	assert.Equal(t, "INV-1", billing.FormatNumber("INV", 1, 0))
}

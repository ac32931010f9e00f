package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iimin/restosim/schema"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{name: "shorter than limit", input: "abc", maxLen: 10, expected: "abc"},
		{name: "exactly at limit", input: "abcde", maxLen: 5, expected: "abcde"},
		{name: "longer than limit", input: "abcdefgh", maxLen: 5, expected: "abcde"},
		{name: "empty input", input: "", maxLen: 5, expected: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, schema.Truncate(tc.input, tc.maxLen))
		})
	}
}

func TestBookingStatusNamesFitColumn(t *testing.T) {
	names := schema.BookingStatusNames()

	assert.Len(t, names, 4)
	assert.Equal(t, int64(schema.StatusPending), names["Pending"])
	assert.Equal(t, int64(schema.StatusConfirmed), names["Confirmed"])
	assert.Equal(t, int64(schema.StatusCancelled), names["Cancelled"])
	assert.Equal(t, int64(schema.StatusCompleted), names["Completed"])

	for name := range names {
		assert.LessOrEqual(t, len(name), schema.MaxLenStatusName)
	}
}

func TestPaymentVocabulariesFitColumns(t *testing.T) {
	for _, method := range schema.PaymentMethods() {
		assert.LessOrEqual(t, len(method), schema.MaxLenPaymentMethod)
	}

	for _, status := range schema.PaymentStatuses() {
		assert.LessOrEqual(t, len(status), schema.MaxLenPaymentStatus)
	}
}

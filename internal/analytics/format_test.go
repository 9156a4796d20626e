package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatComma(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{1234567.5, "1,234,567.5"},
		{-98765, "-98,765"},
		{-1234.25, "-1,234.25"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatComma(tc.in), "formatComma(%v)", tc.in)
	}
}

func TestFormatSignedAmount(t *testing.T) {
	assert.Equal(t, "+1,234", formatSignedAmount(1234.4))
	assert.Equal(t, "+0", formatSignedAmount(0))
	assert.Equal(t, "-567", formatSignedAmount(-567.2))
	assert.Equal(t, "-10,000", formatSignedAmount(-10000))
}

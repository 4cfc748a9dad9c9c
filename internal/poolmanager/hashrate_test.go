package poolmanager

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeHashrateFormat(t *testing.T) {
	got := encodeHashrate(123456789)
	assert.True(t, strings.HasPrefix(got, "0x"))
	assert.Len(t, got, 66) // "0x" + 64 hex digits
	assert.True(t, strings.HasSuffix(got, "75bcd15"))
}

func TestEncodeHashrateZero(t *testing.T) {
	got := encodeHashrate(0)
	assert.Equal(t, "0x"+strings.Repeat("0", 64), got)
}

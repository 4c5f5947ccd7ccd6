package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{-5, "0 B"},
		{0, "0 B"},
		{82, "82 B"},
		{1500000, "1.5 MB"},
		{82854982, "83 MB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Bytes(tt.in))
	}

	assert.Equal(t, "1.5 MB/s", Rate(1500000))
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{59 * time.Second, "59s"},
		{90 * time.Second, "2m"},
		{2 * time.Hour, "2h"},
		{36 * time.Hour, "2d"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Duration(tt.in), tt.in.String())
	}
}

func TestPercentAndCount(t *testing.T) {
	assert.Equal(t, "25.0%", Percent(0.25))
	assert.Equal(t, "1,234,567", Count(1234567))
}

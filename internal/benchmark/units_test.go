package benchmark

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		name     string
		seconds  float64
		expected string
	}{
		{"Zero", 0, "0ns"},
		{"Below base unit", 5e-10, "0.5ns"},
		{"Nanoseconds", 999e-9, "999ns"},
		{"Microsecond boundary", 1e-6, "1µs"},
		{"Microseconds", 12.345e-6, "12.3µs"},
		{"Milliseconds", 0.0125, "12.5ms"},
		{"Seconds", 1.5, "1.5s"},
		{"Minute boundary", 60, "1m"},
		{"Minutes", 90, "1.5m"},
		{"Hours", 7200, "2h"},
		{"Days", 86400 * 3, "3d"},
		{"Weeks", 604800 * 2, "2w"},
		{"Many weeks", 604800 * 1500, "1.5e+03w"},
		{"Rounds within unit", 999.9e-6, "1e+03µs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSeconds(tt.seconds))
		})
	}
}

func TestFormatSeconds_Boundary(t *testing.T) {
	assert.True(t, strings.HasSuffix(FormatSeconds(999e-9), "ns"))
	assert.True(t, strings.HasSuffix(FormatSeconds(1e-6), "µs"))
	assert.True(t, strings.HasSuffix(FormatSeconds(59.999), "s"))
	assert.True(t, strings.HasSuffix(FormatSeconds(60), "m"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", FormatDuration(250*time.Millisecond))
	assert.Equal(t, "2m", FormatDuration(2*time.Minute))
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{"Zero", 0, "0B"},
		{"Bytes", 512, "512B"},
		{"Just below KB", 1023, "1023B"},
		{"KB boundary", 1024, "1KB"},
		{"KB", 1536, "1.5KB"},
		{"Just below MB", 1024*1024 - 1, "1.02e+03KB"},
		{"MB boundary", 1024 * 1024, "1MB"},
		{"GB", 3 * 1024 * 1024 * 1024, "3GB"},
		{"TB", 1 << 40, "1TB"},
		{"EB", 2 << 60, "2EB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBytes(tt.bytes))
		})
	}
}

func TestLadderFormat(t *testing.T) {
	ladder := Ladder{{1, "x"}, {10, "dx"}}
	assert.Equal(t, "0.5x", ladder.Format(0.5))
	assert.Equal(t, "9.99x", ladder.Format(9.99))
	assert.Equal(t, "1dx", ladder.Format(10))
	assert.Equal(t, "12", Ladder{}.Format(12))
}

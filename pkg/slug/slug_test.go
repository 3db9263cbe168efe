package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectID(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{title: "Weather Dashboard", expected: "weather-dashboard"},
		{title: "  Trailing  spaces  ", expected: "trailing-spaces"},
		{title: "Café Finder 2.0", expected: "cafe-finder-2-0"},
		{title: "C++ / Rust interop!", expected: "c-rust-interop"},
		{title: "already-a-slug", expected: "already-a-slug"},
		{title: "!!!", expected: ""},
		{title: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProjectID(tt.title))
		})
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("weather-dashboard"))
	assert.True(t, Valid("p1"))
	assert.False(t, Valid("Weather Dashboard"))
	assert.False(t, Valid("-leading"))
	assert.False(t, Valid(""))
}

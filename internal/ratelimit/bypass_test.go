package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBypassPolicy(t *testing.T) {
	p := NewBypassPolicy([]string{"/v1/ping", "/health", ""}, []string{"/authentication/", ""})

	tests := []struct {
		path string
		want bool
	}{
		{"/v1/ping", true},
		{"/health", true},
		{"/authentication/login", true},
		{"/authentication/refresh", true},
		{"/v1/me", false},
		{"/v1/pingx", false},
		{"/authentication", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Bypassed(tt.path))
		})
	}
}

func TestBypassPolicy_Empty(t *testing.T) {
	p := NewBypassPolicy(nil, nil)
	assert.False(t, p.Bypassed("/health"))
}

package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldSkipIdempotence(t *testing.T) {
	tests := []struct {
		path string
		skip bool
	}{
		{"/api/v1/checkins", true},
		{"/api/v1/checkins/", true},
		{"/API/V1/CHECKINS", true},
		{"/api/v1/auth/login", true},
		{"/api/v1/auth/register", false},
		{"/api/v1/sessions", false},
		{"/api/v1/users/me", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.skip, shouldSkipIdempotence(tt.path))
		})
	}
}

package codes

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type codedError struct {
	code int
}

func (e *codedError) Error() string { return "coded" }
func (e *codedError) ExitCode() int { return e.code }

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		want     bool
	}{
		{
			name:     "exit code 0 is success",
			exitCode: Success,
			want:     true,
		},
		{
			name:     "configuration error is failure",
			exitCode: Configuration,
			want:     false,
		},
		{
			name:     "dependency error is failure",
			exitCode: Dependency,
			want:     false,
		},
		{
			name:     "unknown code is failure",
			exitCode: 999,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSuccess(tt.exitCode))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "Success", GetErrorMessage(Success))
	assert.Equal(t, "Dependency analysis failed", GetErrorMessage(Dependency))
	assert.Equal(t, "Unknown error", GetErrorMessage(-1))

	for code := range Descriptions {
		assert.NotEqual(t, "Unknown error", GetErrorMessage(code), "Code %d should have a message", code)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: Success,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: Failure,
		},
		{
			name: "coded error",
			err:  &codedError{code: Configuration},
			want: Configuration,
		},
		{
			name: "wrapped coded error",
			err:  fmt.Errorf("resolve: %w", &codedError{code: Dependency}),
			want: Dependency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromError(tt.err))
		})
	}
}

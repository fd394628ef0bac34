package httpapi

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitedBody(t *testing.T) {
	tests := []struct {
		name    string
		content string
		limit   int64
		wantErr bool
	}{
		{"under limit", "hello", 10, false},
		{"at limit", "hello", 5, false},
		{"over limit", "hello world", 5, true},
		{"empty", "", 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := io.ReadAll(newLimitedBody(strings.NewReader(tt.content), tt.limit))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, isBodyTooLarge(err))
				assert.Len(t, data, int(tt.limit))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(data))
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 bytes", formatSize(512))
	assert.Equal(t, "1.5 KB", formatSize(1536))
	assert.Equal(t, "1.0 MB", formatSize(DefaultMaxBodyBytes))
}

package log

import (
	"bytes"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersByLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		lvl       string
		wantDebug bool
		wantInfo  bool
		wantError bool
	}{
		{name: "debug", lvl: "debug", wantDebug: true, wantInfo: true, wantError: true},
		{name: "info", lvl: "info", wantInfo: true, wantError: true},
		{name: "error", lvl: "error", wantError: true},
		{name: "unknown falls back to info", lvl: "verbose", wantInfo: true, wantError: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, tt.lvl)

			require.NoError(t, level.Debug(logger).Log("msg", "d"))
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("msg=d")))

			require.NoError(t, level.Info(logger).Log("msg", "i"))
			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("msg=i")))

			require.NoError(t, level.Error(logger).Log("msg", "e"))
			assert.Equal(t, tt.wantError, bytes.Contains(buf.Bytes(), []byte("msg=e")))
		})
	}
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidLevel("warn"))
	assert.False(t, ValidLevel(""))
	assert.False(t, ValidLevel("trace"))
}

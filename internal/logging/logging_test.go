package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLevel(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"bogus", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			require.NoError(t, Init(tt.level, "", false))
			assert.Equal(t, tt.want, Get().GetLevel())
		})
	}
}

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vkexamples.log")
	require.NoError(t, Init("info", path, false))

	WithExample("triangle").Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "example=triangle")
}

func TestGetWithoutInit(t *testing.T) {
	log = nil
	assert.NotNil(t, Get())
}

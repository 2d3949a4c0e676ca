package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name          string
		logLevel      string
		envLevel      string
		isDevelopment bool
		expectedLevel logrus.Level
		expectJSON    bool
	}{
		{
			name:          "production defaults to info and json",
			expectedLevel: logrus.InfoLevel,
			expectJSON:    true,
		},
		{
			name:          "development defaults to debug text",
			isDevelopment: true,
			expectedLevel: logrus.DebugLevel,
			expectJSON:    false,
		},
		{
			name:          "explicit level wins over env",
			logLevel:      "warn",
			envLevel:      "debug",
			expectedLevel: logrus.WarnLevel,
			expectJSON:    true,
		},
		{
			name:          "env level is used when arg empty",
			envLevel:      "ERROR",
			expectedLevel: logrus.ErrorLevel,
			expectJSON:    true,
		},
		{
			name:          "invalid level falls back to info",
			logLevel:      "loud",
			expectedLevel: logrus.InfoLevel,
			expectJSON:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			os.Unsetenv("LOG_FORMAT")
			if tt.envLevel != "" {
				os.Setenv("LOG_LEVEL", tt.envLevel)
			} else {
				os.Unsetenv("LOG_LEVEL")
			}
			defer os.Unsetenv("LOG_LEVEL")

			log := InitLogger(tt.logLevel, tt.isDevelopment)

			require.NotNil(t, log)
			assert.Equal(t, tt.expectedLevel, log.GetLevel())
			_, isJSON := log.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
			assert.Same(t, log, GetLogger())
		})
	}
}

func TestWithPassContext(t *testing.T) {
	Logger = nil
	log := InitLogger("info", false)
	var buf bytes.Buffer
	log.SetOutput(&buf)

	WithPassContext("pass-1", "2025-01-15").Info("pass started")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pass-1", entry["pass_id"])
	assert.Equal(t, "2025-01-15", entry["pass_date"])
	assert.Equal(t, "pass started", entry["msg"])
}

func TestWithPlayerContextOmitsEmptyFields(t *testing.T) {
	Logger = nil
	InitLogger("info", false)

	entry := WithPlayerContext("", "Jalen Brunson")

	assert.NotContains(t, entry.Data, "player_id")
	assert.Equal(t, "Jalen Brunson", entry.Data["player_name"])
}

func TestGetLoggerInitializesWhenNil(t *testing.T) {
	Logger = nil
	log := GetLogger()
	require.NotNil(t, log)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

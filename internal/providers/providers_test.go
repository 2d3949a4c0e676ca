package providers

import (
	"encoding/json"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// MockCacheProvider implements a simple in-memory cache for testing
type MockCacheProvider struct {
	data map[string]interface{}
	sets int
}

func NewMockCacheProvider() *MockCacheProvider {
	return &MockCacheProvider{
		data: make(map[string]interface{}),
	}
}

func (m *MockCacheProvider) SetSimple(key string, value interface{}, expiration time.Duration) error {
	m.data[key] = value
	m.sets++
	return nil
}

func (m *MockCacheProvider) GetSimple(key string, dest interface{}) error {
	val, exists := m.data[key]
	if !exists {
		return redis.Nil
	}

	// Marshal and unmarshal to simulate real cache behavior
	data, _ := json.Marshal(val)
	return json.Unmarshal(data, dest)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

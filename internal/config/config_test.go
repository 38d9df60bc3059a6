package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend.test:5000/")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("BACKEND_REFRESH_TIMEOUT", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "http://backend.test:5000", cfg.Backend.URL)
	require.Equal(t, 3*time.Second, cfg.Backend.RefreshTimeout)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, "cloudinary", cfg.Media.Driver)
	require.Equal(t, "services", cfg.Media.Folder)
	require.True(t, cfg.RateLimit.Enabled)
}

func TestLoadConfig_RejectsUnknownMediaDriver(t *testing.T) {
	t.Setenv("MEDIA_DRIVER", "ftp")

	_, err := LoadConfig()
	require.ErrorIs(t, err, ErrUnknownMediaDriver)
}

func TestRedisAddr_EmptyWhenUnconfigured(t *testing.T) {
	require.Equal(t, "", RedisConfig{Port: "6379"}.Addr())
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	require.Nil(t, splitList(""))
}

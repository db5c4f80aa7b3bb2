package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-m", "production", "-a", "127.0.0.1:9090", "-d", "db", "-s", "secret",
			"-t", "60", "-r", "1440", "-x", "30", "-o", "https://tabliya.example",
			"-k", "smtp", "-l", "redis:6379",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
		}, expectPanic: false,
			expected: &Config{
				Env:                      "production",
				EndpointAddrHTTP:         "127.0.0.1:9090",
				DatabaseDSN:              "db",
				SecretKey:                "secret",
				AccessTokenCookieMaxAge:  time.Hour,
				RefreshTokenCookieMaxAge: 24 * time.Hour,
				PasswordResetTokenTTL:    30 * time.Minute,
				FrontendOrigin:           "https://tabliya.example",
				EmailProvider:            "smtp",
				RedisAddr:                "redis:6379",
				S3RootUser:               "user",
				S3RootPassword:           "password",
				S3Bucket:                 "bucket",
				S3Region:                 "us-west-1",
				S3BaseEndpoint:           "http://endpoint",
			}},
		{name: "unknown flags are ignored", args: []string{"cmd", "-z", "1", "-a", ":1"},
			expected: &Config{EndpointAddrHTTP: ":1"}},
		{name: "non-numeric duration panics", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const minimal = `
http:
  addr: ":8080"
jwt:
  secret: "0123456789abcdef0123456789abcdef"
  expire_seconds: 3600
`

func TestLoadMinimalAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)
	assert.Equal(t, "crm_access_log", c.Kafka.AccessTopic)
	assert.Equal(t, "crm_message_dispatch", c.Kafka.DispatchTopic)
	assert.Equal(t, "jwt:jti:", c.Redis.JTIPrefix)
	assert.Equal(t, 10, c.Redis.HeartbeatSec)
	assert.Equal(t, 1024, c.Kafka.AccessQueueSize)
	assert.False(t, c.OTel.Enable)
}

func TestLoadRejectsMissingAddr(t *testing.T) {
	_, err := Load(writeConfig(t, `
jwt:
  secret: "0123456789abcdef0123456789abcdef"
  expire_seconds: 3600
`))
	assert.Error(t, err)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	_, err := Load(writeConfig(t, `
http:
  addr: ":8080"
jwt:
  secret: "short"
  expire_seconds: 3600
`))
	assert.Error(t, err)
}

func TestLoadRejectsOTelWithoutEndpoint(t *testing.T) {
	_, err := Load(writeConfig(t, minimal+`
otel:
  enable: true
`))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_DATABASE_ENGINE", "sqlite3")
	t.Setenv("TEST_DATABASE_PATH", "shule.db")
	t.Setenv("TEST_SERVER_PORT", "9090")
	t.Setenv("TEST_REDIS_STATSTTL", "1m")

	conf := NewConfig()
	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.Equal(t, "Shule", conf.AppName)
	assert.Equal(t, "noreply@localhost", conf.DefaultFromEmail.Address)
	assert.True(t, conf.Database.IsSQLite())
	assert.Equal(t, "shule.db", conf.Database.Path)
	assert.Equal(t, ":9090", conf.Server.Address())
	assert.Equal(t, []string{"http://localhost:3000"}, conf.Server.AllowedOrigins)
	assert.Equal(t, time.Minute, conf.Redis.StatsTTL)
	assert.Equal(t, 5, conf.Dashboard.ActivityLimit)
	assert.False(t, conf.Dashboard.SampleActivities)
}

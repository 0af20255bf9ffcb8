package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-portal/internal/model"
)

func TestDefaultsApplied(t *testing.T) {
	v := viper.New()
	v.Set("DB_DSN", "postgres://localhost/portal")
	v.Set("JWT_ACCESS_SECRET", "secret")
	v.Set("ACCESS_CODE_UTILITY_OFFICER", "2222")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 7090, cfg.HTTP.Port)
	assert.Equal(t, 12*time.Hour, cfg.Auth.AccessTTL)
	assert.Equal(t, 200, cfg.List.DefaultLimit)
	assert.Equal(t, "2222", cfg.Auth.AccessCodes[model.UserRoleUtilityOfficer])
	assert.Empty(t, cfg.Auth.AccessCodes[model.UserRoleVehicleDriver])
}

func TestRequiredKeys(t *testing.T) {
	v := viper.New()
	_, err := fromViper(v)
	assert.EqualError(t, err, "DB_DSN is required")

	v.Set("DB_DSN", "postgres://localhost/portal")
	_, err = fromViper(v)
	assert.EqualError(t, err, "JWT_ACCESS_SECRET is required")
}

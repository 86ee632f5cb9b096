package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Store: StoreConfig{
			Backend:    StoreBackendBadger,
			BadgerPath: "/tmp/notevault-test/db",
		},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Environment(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "qa"

	err := cfg.Validate()
	assert.ErrorContains(t, err, "invalid environment")
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logger.Level = "verbose"

	err := cfg.Validate()
	assert.ErrorContains(t, err, "invalid log level")
}

func TestValidate_StoreBackend(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "dynamo" },
			wantErr: "invalid store backend",
		},
		{
			name:    "badger without path",
			mutate:  func(c *Config) { c.Store.BadgerPath = "" },
			wantErr: "badger path",
		},
		{
			name: "mongo without uri",
			mutate: func(c *Config) {
				c.Store.Backend = StoreBackendMongo
				c.Store.MongoURI = ""
			},
			wantErr: "MONGO_URI",
		},
		{
			name: "mongo without database",
			mutate: func(c *Config) {
				c.Store.Backend = StoreBackendMongo
				c.Store.MongoURI = "mongodb://localhost:27017"
				c.Store.MongoDatabase = ""
			},
			wantErr: "MONGO_DB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("", "/default/db")
	assert.NoError(t, err)
	assert.Equal(t, "/default/db", got)

	got, err = expandPath("/explicit/db", "/default/db")
	assert.NoError(t, err)
	assert.Equal(t, "/explicit/db", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("NOTEVAULT_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "NOTEVAULT_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "NOTEVAULT_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "NOTEVAULT_TEST_MISSING", "default"))
}

package business

import (
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatassist/dialog-manager/internal/config"
)

func badRef() commoncfg.SourceRef {
	return commoncfg.SourceRef{Source: "file", File: commoncfg.CredentialFile{Path: "/nonexistent/file"}}
}

func embeddedRef(value string) commoncfg.SourceRef {
	return commoncfg.SourceRef{Source: "embedded", Value: value}
}

func validDatabase() config.Database {
	return config.Database{
		Host:     embeddedRef("localhost"),
		Port:     "5432",
		Name:     "testdb",
		User:     embeddedRef("user"),
		Password: embeddedRef("pass"),
	}
}

func TestInitEngine_InvalidDatabaseConfig(t *testing.T) {
	cfg := &config.Config{
		Database: config.Database{
			Host:     badRef(),
			Port:     "5432",
			Name:     "testdb",
			User:     embeddedRef("user"),
			Password: embeddedRef("pass"),
		},
	}

	_, _, err := initEngine(t.Context(), cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "making dsn from config")
}

func TestInitEngine_UnknownDialogStore(t *testing.T) {
	cfg := &config.Config{
		Database: validDatabase(),
		Dialog:   config.Dialog{Store: "etcd"},
	}

	_, _, err := initEngine(t.Context(), cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dialog store")
}

func TestInitEngine_InvalidTimezone(t *testing.T) {
	cfg := &config.Config{
		Database:  validDatabase(),
		Scheduler: config.Scheduler{Timezone: "Mars/Olympus"},
	}

	_, _, err := initEngine(t.Context(), cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "loading timezone")
}

func TestInitEngine_MemoryStore(t *testing.T) {
	cfg := &config.Config{
		Database: validDatabase(),
	}

	eng, closeFn, err := initEngine(t.Context(), cfg)
	require.NoError(t, err)
	defer closeFn()

	assert.NotNil(t, eng.Manager)
	assert.NotNil(t, eng.Gateway)
	assert.NotNil(t, eng.Views)
}

func TestLoadValkeyClient_InvalidHostRef(t *testing.T) {
	cfg := &config.Config{
		ValKey: config.ValKey{
			Host:     badRef(),
			User:     embeddedRef("user"),
			Password: embeddedRef("pass"),
		},
	}

	_, err := loadValkeyClient(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "loading valkey host")
}

func TestLoadValkeyClient_InvalidUserRef(t *testing.T) {
	cfg := &config.Config{
		ValKey: config.ValKey{
			Host:     embeddedRef("localhost:6379"),
			User:     badRef(),
			Password: embeddedRef("pass"),
		},
	}

	_, err := loadValkeyClient(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "loading valkey username")
}

func TestLoadValkeyClient_InvalidPasswordRef(t *testing.T) {
	cfg := &config.Config{
		ValKey: config.ValKey{
			Host:     embeddedRef("localhost:6379"),
			User:     embeddedRef("user"),
			Password: badRef(),
		},
	}

	_, err := loadValkeyClient(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "loading valkey password")
}

func TestSchedulerMain_InvalidDatabaseConfig(t *testing.T) {
	cfg := &config.Config{
		Database: config.Database{
			Host:     badRef(),
			Port:     "5432",
			Name:     "testdb",
			User:     embeddedRef("user"),
			Password: embeddedRef("pass"),
		},
	}

	err := SchedulerMain(t.Context(), cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "initialising the engine")
}

package conf

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	os.Unsetenv("MOSAICDB_DATABASE_DATABASEPATH")
	os.Unsetenv("MOSAICDB_DATABASE_BLOBCACHESIZE")
	os.Unsetenv("MOSAICDB_LOGGING_DEBUG")
}

func TestDefaults(t *testing.T) {
	clearConfigEnvVars(t)
	viper.Reset()

	InitConfig("", false)

	if Configuration.Database.DatabasePath != "" {
		t.Errorf("Expected empty default database path, got %q", Configuration.Database.DatabasePath)
	}
	if Configuration.Database.BlobCacheSize != 0 {
		t.Errorf("Expected default blob cache size 0, got %d", Configuration.Database.BlobCacheSize)
	}
	if Configuration.Logging.Debug {
		t.Error("Expected debug to default to false")
	}
}

func TestDatabasePathEnvironmentVariable(t *testing.T) {
	clearConfigEnvVars(t)
	defer clearConfigEnvVars(t)

	os.Setenv("MOSAICDB_DATABASE_DATABASEPATH", "/data/scan.mosaicdb")
	viper.Reset()

	InitConfig("", false)

	if Configuration.Database.DatabasePath != "/data/scan.mosaicdb" {
		t.Errorf("Expected database path from env, got %q", Configuration.Database.DatabasePath)
	}
}

func TestDebugFlagOverridesConfig(t *testing.T) {
	clearConfigEnvVars(t)
	viper.Reset()

	InitConfig("", true)

	if !Configuration.Logging.Debug {
		t.Error("Expected debug flag to force Logging.Debug")
	}
}

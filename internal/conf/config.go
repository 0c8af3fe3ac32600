package conf

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the application configuration of the inspection tool.
type Config struct {
	Database Database
	Logging  Logging
}

// Database selects the document file and cache behavior.
type Database struct {
	// DatabasePath is the document file to open.
	DatabasePath string
	// BlobCacheSize is the number of payloads kept in the read cache; 0
	// disables caching.
	BlobCacheSize int
}

// Logging controls log output.
type Logging struct {
	// Debug sets the log level to Trace.
	Debug bool
}

// Configuration is the global application configuration, filled by
// InitConfig.
var Configuration Config

func setDefaultConfig() {
	viper.SetDefault("Database.DatabasePath", "")
	viper.SetDefault("Database.BlobCacheSize", 0)
	viper.SetDefault("Logging.Debug", false)
}

// InitConfig loads the configuration from the optional config file and
// the MOSAICDB_* environment variables.
func InitConfig(configFilename string, debug bool) {
	setDefaultConfig()

	viper.SetEnvPrefix(AppConfig.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFilename != "" {
		viper.SetConfigFile(configFilename)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatalf("Error reading config file %s: %v", configFilename, err)
		}
		log.Infof("Using config file: %s", viper.ConfigFileUsed())
	}

	if err := viper.Unmarshal(&Configuration); err != nil {
		log.Fatalf("Error unmarshalling configuration: %v", err)
	}

	if debug {
		Configuration.Logging.Debug = true
	}
}

// DumpConfig logs the effective configuration.
func DumpConfig() {
	log.Infof("Config: Database.DatabasePath = %s", Configuration.Database.DatabasePath)
	log.Infof("Config: Database.BlobCacheSize = %d", Configuration.Database.BlobCacheSize)
	log.Infof("Config: Logging.Debug = %v", Configuration.Logging.Debug)
}

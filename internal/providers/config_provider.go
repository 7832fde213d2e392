package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"folivix/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "FOLIVIX_LOG_LEVEL")
	viper.BindEnv("storage.dataDir", "FOLIVIX_DATA_DIR")
	viper.BindEnv("classifier.defaultHost", "FOLIVIX_CLASSIFIER_HOST")
	viper.BindEnv("cache.enabled", "FOLIVIX_CACHE_ENABLED")
	viper.BindEnv("cache.size", "FOLIVIX_CACHE_SIZE")
	viper.BindEnv("tips.interval", "FOLIVIX_TIP_INTERVAL")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "Folivix"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

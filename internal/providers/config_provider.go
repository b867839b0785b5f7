package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "SOMP_LOG_LEVEL")
	viper.BindEnv("rateStore.backend", "SOMP_RATE_STORE_BACKEND")
	viper.BindEnv("rateStore.addr", "SOMP_REDIS_ADDR")
	viper.BindEnv("rateStore.password", "SOMP_REDIS_PASSWORD")
	viper.BindEnv("storage.path", "SOMP_DB_PATH")
	viper.BindEnv("cache.enabled", "SOMP_CACHE_ENABLED")
	viper.BindEnv("cache.size", "SOMP_CACHE_SIZE")

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

	conf.AppName = "SaveOneMorePerson"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	// Abuse policy is compiled in, never file-driven.
	conf.Guard = structures.DefaultGuardConfig()
	conf.Deck = structures.DefaultDeckConfig()

	return &conf, nil
}

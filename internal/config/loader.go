package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Loader handles setting up viper and loading configuration from files and the environment.
type Loader struct {
	*viper.Viper
}

// NewLoader creates a loader. When configFile is empty the default config name is searched for in the
// users config directory and the working directory.
func NewLoader(configFile string) *Loader {
	loader := Loader{Viper: viper.New()}
	loader.SetDefault("log_level", "info")
	loader.SetDefault("log_file", "")
	loader.SetDefault("report_format", string(FormatJSON))
	loader.SetDefault("progress", true)
	loader.SetDefault("strict", true)
	loader.SetDefault("database_path", "")

	if configFile != "" {
		loader.SetConfigFile(configFile)
	} else {
		loader.SetConfigName(DefaultConfigName)
		loader.SetConfigType("yaml")
		loader.AddConfigPath(Path(""))
		loader.AddConfigPath(".")
	}

	loader.SetEnvPrefix(EnvPrefix)
	loader.AutomaticEnv()

	return &loader
}

func (cl *Loader) Path() string {
	return cl.ConfigFileUsed()
}

// Read loads the config. A missing config file is fine, the defaults are used instead.
func (cl *Loader) Read() (Config, error) {
	if err := cl.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return Config{}, errors.Join(err, errConfigRead)
		}
	}

	var config Config
	if err := cl.Unmarshal(&config); err != nil {
		return Config{}, errors.Join(err, errConfigRead)
	}

	if err := config.Validate(); err != nil {
		return Config{}, errors.Join(err, errConfigRead)
	}

	return config, nil
}

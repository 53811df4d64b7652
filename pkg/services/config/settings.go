package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Settings struct {
	Catalogue    string         `mapstructure:"catalogue"`
	Database     string         `mapstructure:"database"`
	InputDir     string         `mapstructure:"input_dir"`
	ExportDir    string         `mapstructure:"export_dir"`
	Workers      int            `mapstructure:"workers"`
	LogLevel     string         `mapstructure:"log_level"`
	Profile      string         `mapstructure:"profile"`
	ProfilesPath string         `mapstructure:"profiles_path"`
	Server       ServerSettings `mapstructure:"server"`
}

type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("catalogue", "configs/catalogue.yaml")
	v.SetDefault("database", "fidc-atlas.db")
	v.SetDefault("input_dir", "data/raw")
	v.SetDefault("export_dir", "data/export")
	v.SetDefault("workers", 1)
	v.SetDefault("log_level", "info")
	v.SetDefault("profile", "")
	v.SetDefault("profiles_path", "")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
}

// LoadSettings reads application settings from path (optional) and FIDC_* variables.
// SERVER_HOST and SERVER_PORT are honoured for the web entry point.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("FIDC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.host", "FIDC_SERVER_HOST", "SERVER_HOST")
	_ = v.BindEnv("server.port", "FIDC_SERVER_PORT", "SERVER_PORT")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	return &s, nil
}

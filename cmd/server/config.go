package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// serverConfig is the process-level configuration, layered from defaults, an
// optional config file, and MEDINTEL_* environment variables.
type serverConfig struct {
	Addr          string  `mapstructure:"addr"`
	GraphPath     string  `mapstructure:"graph_path"`
	TopDiagnoses  int     `mapstructure:"top_diagnoses"`
	MinEdgeWeight float64 `mapstructure:"min_edge_weight"`
	APIKey        string  `mapstructure:"api_key"`
	CORSOrigins   string  `mapstructure:"cors_origins"`
	LogLevel      string  `mapstructure:"log_level"`
}

func loadConfig(path string) (*serverConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("graph_path", "")
	v.SetDefault("top_diagnoses", 5)
	v.SetDefault("min_edge_weight", 0.5)
	v.SetDefault("log_level", "info")

	// Bind env vars explicitly so Unmarshal picks them up.
	for _, key := range []string{
		"addr",
		"graph_path",
		"top_diagnoses",
		"min_edge_weight",
		"api_key",
		"cors_origins",
		"log_level",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &serverConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

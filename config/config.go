/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads the service configuration from a YAML file and
// ACCOUNTOWNER_* environment variables, the latter taking precedence.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tomoncle/accountowner/database"
)

const (
	DefaultPath = "configs/config.yaml"
	EnvPrefix   = "ACCOUNTOWNER_"
)

type Config struct {
	HTTP     HTTP            `yaml:"http" envPrefix:"HTTP_"`
	Log      Log             `yaml:"log" envPrefix:"LOG_"`
	Database database.Config `yaml:"database" envPrefix:"DATABASE_"`
}

type HTTP struct {
	Address         string        `yaml:"address" env:"ADDRESS,expand"`
	BasePath        string        `yaml:"base_path" env:"BASE_PATH"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	CORS            CORS          `yaml:"cors" envPrefix:"CORS_"`
}

type CORS struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	AllowedMethods   []string `yaml:"allowed_methods" env:"ALLOWED_METHODS"`
	AllowedHeaders   []string `yaml:"allowed_headers" env:"ALLOWED_HEADERS"`
	ExposedHeaders   []string `yaml:"exposed_headers" env:"EXPOSED_HEADERS"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"ALLOW_CREDENTIALS"`
}

type Log struct {
	Level   string `yaml:"level" env:"LEVEL"`
	Format  string `yaml:"format" env:"FORMAT"` // text, json
	FileDir string `yaml:"file_dir" env:"FILE_DIR"`
}

// Default returns the built-in configuration: sqlite, port 8080 and a CORS
// policy open to any origin, method and header.
func Default() *Config {
	return &Config{
		HTTP: HTTP{
			Address:         ":8080",
			BasePath:        "/api",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORS: CORS{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS", "HEAD"},
				AllowedHeaders: []string{"*"},
				ExposedHeaders: []string{"Location"},
			},
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Database: *database.DefaultConfig(),
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path means DefaultPath, which may be absent.
func Load(path string) (*Config, error) {
	conf := Default()

	optional := path == ""
	if optional {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, conf); err != nil {
			return nil, errors.Wrapf(err, "could not parse %s", path)
		}
	case optional && errors.Is(err, os.ErrNotExist):
	default:
		return nil, errors.WithStack(err)
	}

	if err := env.ParseWithOptions(conf, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.WithStack(err)
	}
	return conf, nil
}

var _ database.AbstractDatabaseConfigProvider = (*Config)(nil)

func (c *Config) ConfigLoader() *database.Config {
	return &c.Database
}

// Package config loads the settings shared by entity-cli and entity-server.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"yashubustudio/entityclassifier/dataset"
)

const defaultConfigFile = "config.json"

// Config holds file and environment settings. Zero fields are filled by ApplyDefaults.
type Config struct {
	DataDir         string                   `json:"dataDir" toml:"data_dir"`
	ListenAddr      string                   `json:"listenAddr" toml:"listen_addr"`
	StaticDir       string                   `json:"staticDir,omitempty" toml:"static_dir,omitempty"`
	RulesPath       string                   `json:"rulesPath,omitempty" toml:"rules_path,omitempty"`
	OutputDir       string                   `json:"outputDir" toml:"output_dir"`
	CacheTTLSeconds int                      `json:"cacheTtlSeconds" toml:"cache_ttl_seconds"`
	Mock            bool                     `json:"mock" toml:"mock"`
	MockSeed        int64                    `json:"mockSeed" toml:"mock_seed"`
	Columns         dataset.ColumnCandidates `json:"columns" toml:"columns"`
}

// Default returns the built-in settings.
func Default() Config {
	cfg := Config{Mock: true}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "August"
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		c.ListenAddr = ":8000"
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		c.OutputDir = "csv"
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = 30
	}
	if c.MockSeed == 0 {
		c.MockSeed = 1
	}
	defaults := dataset.DefaultColumnCandidates()
	if len(c.Columns.Name) == 0 {
		c.Columns.Name = defaults.Name
	}
	if len(c.Columns.ID) == 0 {
		c.Columns.ID = defaults.ID
	}
	if len(c.Columns.City) == 0 {
		c.Columns.City = defaults.City
	}
	if len(c.Columns.Language) == 0 {
		c.Columns.Language = defaults.Language
	}
	if len(c.Columns.EntityType) == 0 {
		c.Columns.EntityType = defaults.EntityType
	}
}

// CacheTTL is CacheTTLSeconds as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load reads path, or config.json when path is empty. A missing file yields the
// defaults. "mock" defaults to true when the file does not set it. PORT and
// ENTITY_DATA_DIR override the file.
func Load(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	cfg, err := readFile(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func readFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if isTOML(path) {
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}
		if !md.IsDefined("mock") {
			cfg.Mock = true
		}
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if !bytes.Contains(data, []byte(`"mock"`)) {
		cfg.Mock = true
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			c.ListenAddr = ":" + v
		}
	}
	if v := strings.TrimSpace(getenv("ENTITY_DATA_DIR")); v != "" {
		c.DataDir = v
	}
}

// Save writes cfg to path through a temporary file, in TOML for .toml paths and
// JSON otherwise.
func Save(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg.ApplyDefaults()
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		data = buf.Bytes()
	} else {
		encoded, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		data = append(encoded, '\n')
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

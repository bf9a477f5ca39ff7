package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zoobzio/qframe"
	"github.com/zoobzio/qframe/mariadb"
)

// Config is the connections file, e.g.
//
//	default: chinook
//	connections:
//	  - name: chinook
//	    driver: sqlite
//	    dsn: file:chinook.db
type Config struct {
	Default     string       `yaml:"default"`
	Connections []Connection `yaml:"connections"`
}

// Connection names a database and how to reach it.
type Connection struct {
	Name   string `yaml:"name"`
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ErrNoConnection is returned when no connection can be resolved.
var ErrNoConnection = errors.New("no connection configured")

// LoadConfig reads and validates the connections file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a connections document. Unknown keys
// are rejected.
func ParseConfig(data []byte) (*Config, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks names are unique, drivers are supported and DSNs parse
// where the driver allows checking them offline.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Connections))
	for i, conn := range c.Connections {
		if conn.Name == "" {
			return fmt.Errorf("connection %d: name is required", i)
		}
		if seen[conn.Name] {
			return fmt.Errorf("connection %q: duplicate name", conn.Name)
		}
		seen[conn.Name] = true
		if err := conn.Validate(); err != nil {
			return fmt.Errorf("connection %q: %w", conn.Name, err)
		}
	}
	if c.Default != "" && !seen[c.Default] {
		return fmt.Errorf("default connection %q is not defined", c.Default)
	}
	return nil
}

// Validate checks the driver and DSN of a single connection.
func (c Connection) Validate() error {
	kind, err := qframe.ParseKind(c.Driver)
	if err != nil {
		return err
	}
	if c.DSN == "" {
		return errors.New("dsn is required")
	}
	if kind == qframe.MariaDB {
		if _, err := mariadb.ParseDSN(c.DSN); err != nil {
			return err
		}
	}
	return nil
}

// Lookup resolves name to a connection. An empty name selects the default,
// or the only connection when exactly one is defined.
func (c *Config) Lookup(name string) (Connection, error) {
	if name == "" {
		name = c.Default
	}
	if name == "" {
		if len(c.Connections) == 1 {
			return c.Connections[0], nil
		}
		return Connection{}, ErrNoConnection
	}
	for _, conn := range c.Connections {
		if conn.Name == name {
			return conn, nil
		}
	}
	return Connection{}, fmt.Errorf("%w: %q", ErrNoConnection, name)
}

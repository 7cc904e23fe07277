// Package config holds the daemon's application-level configuration
// (transport, audit sink location, RBAC role assignments) loaded via
// viper, separately from the policy document the policy package parses
// itself with yaml.v3.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// App is the daemon's application configuration.
type App struct {
	Listen struct {
		Address string `mapstructure:"address"`
	} `mapstructure:"listen"`

	Policy struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"policy"`

	Audit struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"audit"`

	Approval struct {
		Mode              string   `mapstructure:"mode"` // interactive|automatic
		AutoApproveLevels []string `mapstructure:"auto_approve_levels"`
		AutoDeny          bool     `mapstructure:"auto_deny"`
	} `mapstructure:"approval"`

	Users []struct {
		ID   string `mapstructure:"id"`
		Role string `mapstructure:"role"`
	} `mapstructure:"users"`

	DataDir string `mapstructure:"-"`
}

// Manager loads and reloads the application configuration.
type Manager struct {
	v *viper.Viper
}

// NewManager initializes the configuration system, seeding defaults and
// creating ~/.agentsh-security/config.yaml if it does not already exist.
func NewManager() (*Manager, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home dir: %w", err)
	}

	dataDir := filepath.Join(home, ".agentsh-security")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	v.SetDefault("listen.address", "127.0.0.1:8443")
	v.SetDefault("policy.path", filepath.Join(dataDir, "policy.yaml"))
	v.SetDefault("audit.path", filepath.Join(dataDir, "audit.log"))
	v.SetDefault("approval.mode", "interactive")
	v.SetDefault("approval.auto_approve_levels", []string{"SAFE", "LOW"})
	v.SetDefault("approval.auto_deny", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dataDir)

	configPath := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := v.SafeWriteConfig(); err != nil {
			return nil, fmt.Errorf("writing initial config: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return &Manager{v: v}, nil
}

// Load unmarshals the current configuration.
func (m *Manager) Load() (*App, error) {
	var cfg App
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	home, _ := os.UserHomeDir()
	cfg.DataDir = filepath.Join(home, ".agentsh-security")
	return &cfg, nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"markab/iosafe"
)

// Config represents the interpreter configuration
type Config struct {
	// Execution settings
	Execution struct {
		MaxCyclesPerStep uint   `toml:"max_cycles_per_step"`
		DefaultROM       string `toml:"default_rom"`
		EnableTrace      bool   `toml:"enable_trace"`
	} `toml:"execution"`

	// FileIO settings: the containment root and load/save path allow-lists
	// enforced by iosafe.Policy for both IOLOAD/IOSAVE and load".
	FileIO struct {
		Root      string   `toml:"root"`
		LoadAllow []string `toml:"load_allow"`
		SaveAllow []string `toml:"save_allow"`
	} `toml:"file_io"`

	// Debugger settings
	Debugger struct {
		HistorySize  int    `toml:"history_size"`
		ShowStacks   bool   `toml:"show_stacks"`
		NumberFormat string `toml:"number_format"` // hex, dec
	} `toml:"debugger"`

	// IRC bridge settings
	IRC struct {
		Enabled bool   `toml:"enabled"`
		Server  string `toml:"server"`
		Channel string `toml:"channel"`
		Nick    string `toml:"nick"`
	} `toml:"irc"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Execution defaults
	cfg.Execution.MaxCyclesPerStep = 65535
	cfg.Execution.DefaultROM = "kernel.rom"
	cfg.Execution.EnableTrace = false

	// FileIO defaults
	cfg.FileIO.Root = "."
	cfg.FileIO.LoadAllow = []string{`.+\.mkb$`}
	cfg.FileIO.SaveAllow = []string{`self_hosted\.rom$`}

	// Debugger defaults
	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowStacks = true
	cfg.Debugger.NumberFormat = "hex"

	// IRC defaults
	cfg.IRC.Enabled = false

	return cfg
}

// GetConfigPath returns the platform-specific config file path
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\markab\config.toml
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "markab")

	case "darwin", "linux":
		// macOS/Linux: ~/.config/markab/config.toml
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to current directory
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "markab")

	default:
		// Unknown platform: use current directory
		return "config.toml"
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0750); err != nil {
		// If we can't create the directory, fall back to current directory
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\markab\logs
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "markab", "logs")

	case "darwin", "linux":
		// macOS/Linux: ~/.local/share/markab/logs
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "markab", "logs")

	default:
		return "logs"
	}

	// Ensure directory exists
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read and parse config file
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file
	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	// Encode to TOML
	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// Policy builds the iosafe.Policy this configuration describes. Returns
// an error if any allow-list pattern fails to compile.
func (c *Config) Policy() (*iosafe.Policy, error) {
	return iosafe.NewPolicy(c.FileIO.Root, c.FileIO.LoadAllow, c.FileIO.SaveAllow)
}

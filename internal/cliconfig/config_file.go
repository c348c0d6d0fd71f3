package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make
// TOML friendly.
type FileConfig struct {
	FromAddr string   `toml:"from_addr"`
	ToAddrs  []string `toml:"to_addrs"`
	Subject  string   `toml:"subject"`

	Host     string `toml:"host"`
	UseTLS   *bool  `toml:"use_tls"`
	Username string `toml:"username"`
	Password string `toml:"password"`

	PollInterval    string `toml:"poll_interval"`
	SendInterval    string `toml:"send_interval"`
	PollDurationMax string `toml:"poll_duration_max"`

	WatchConfig *bool `toml:"watch_config"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path,
// ~/.mailbuf/config.toml, when the home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".mailbuf", "config.toml")
	}
	return ""
}

// FileExists reports whether the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ApplyFileConfig applies configuration from a file to the Config
// struct. It respects flags that have been explicitly set.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("from", fc.FromAddr, &cfg.FromAddr)
	s.setStrings("to", fc.ToAddrs, &cfg.ToAddrs)
	s.setString("subject", fc.Subject, &cfg.Subject)
	s.setString("host", fc.Host, &cfg.Host)
	s.setBool("tls", fc.UseTLS, &cfg.UseTLS)
	s.setString("username", fc.Username, &cfg.Username)
	s.setString("password", fc.Password, &cfg.Password)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("send-interval", fc.SendInterval, &cfg.SendInterval); err != nil {
		return err
	}
	return s.setDuration("poll-duration-max", fc.PollDurationMax, &cfg.PollDurationMax)
}

package cliconfig

import "os"

// ApplyEnvConfig overlays MAILBUF_* environment variables onto the
// config. Environment values override file config but are overridden
// by explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("from", os.Getenv("MAILBUF_FROM"), &cfg.FromAddr)
	s.setStringsFromCSV("to", os.Getenv("MAILBUF_TO"), &cfg.ToAddrs)
	s.setString("subject", os.Getenv("MAILBUF_SUBJECT"), &cfg.Subject)
	s.setString("host", os.Getenv("MAILBUF_HOST"), &cfg.Host)
	s.setBoolFromString("tls", os.Getenv("MAILBUF_TLS"), &cfg.UseTLS)
	s.setString("username", os.Getenv("MAILBUF_USERNAME"), &cfg.Username)
	s.setString("password", os.Getenv("MAILBUF_PASSWORD"), &cfg.Password)
	s.setBoolFromString("watch-config", os.Getenv("MAILBUF_WATCH_CONFIG"), &cfg.WatchConfig)

	if err := s.setDuration("poll", os.Getenv("MAILBUF_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("send-interval", os.Getenv("MAILBUF_SEND_INTERVAL"), &cfg.SendInterval); err != nil {
		return err
	}
	return s.setDuration("poll-duration-max", os.Getenv("MAILBUF_POLL_DURATION_MAX"), &cfg.PollDurationMax)
}

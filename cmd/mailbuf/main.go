package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/mailbuf/mailbuf"
	logAdapter "github.com/mailbuf/mailbuf/internal/adapters/log"
	"github.com/mailbuf/mailbuf/internal/cliconfig"
)

const helpDescription = `
Read log lines from stdin, buffer them, and ship the accumulated set as
one email per send interval instead of one email per line.

Highlights:
  - Never loses a line on shutdown: pending records are flushed before exit.
  - Rate-limits outbound mail with a minimum spacing between sends.
  - Configure via file (~/.mailbuf/config.toml), MAILBUF_* env vars, or flags.
`

var exampleUsage = strings.TrimSpace(`
  tail -f /var/log/app.log | mailbuf --from app@example.com --to ops@example.com
  journalctl -f -p err | mailbuf --config /etc/mailbuf/config.toml --watch-config
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "mailbuf",
		Short:   "Batch log lines from stdin into rate-limited email digests",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first, then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			// Log configuration (masking the password).
			logCfg := cfg
			if len(logCfg.Password) > 0 {
				logCfg.Password = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			var creds *mailbuf.Credentials
			if cfg.Username != "" {
				creds = &mailbuf.Credentials{Username: cfg.Username, Password: cfg.Password}
			}

			h, err := mailbuf.New(mailbuf.Config{
				FromAddr:        cfg.FromAddr,
				ToAddrs:         cfg.ToAddrs,
				Subject:         cfg.Subject,
				Host:            cfg.Host,
				UseTLS:          cfg.UseTLS,
				Credentials:     creds,
				PollInterval:    cfg.PollInterval,
				SendInterval:    cfg.SendInterval,
				PollDurationMax: cfg.PollDurationMax,
			}, mailbuf.WithLogger(logAdapter.NewZerologAdapterWithLogger(log)))
			if err != nil {
				return fmt.Errorf("create handler: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := h.Start(ctx); err != nil {
				return fmt.Errorf("start handler: %w", err)
			}

			if cfg.WatchConfig && cfgFile != "" {
				watcher := cliconfig.NewWatcher(cfgFile, func(iv cliconfig.Intervals) {
					h.SetIntervals(iv.Poll, iv.Send)
				}, logAdapter.NewZerologAdapterWithLogger(log))
				go func() {
					if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
						log.Warn().Err(err).Msg("config watcher stopped")
					}
				}()
			}

			// Feed stdin into the intake queue.
			stdinDone := make(chan error, 1)
			go func() {
				scanner := bufio.NewScanner(os.Stdin)
				scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
				for scanner.Scan() {
					h.Enqueue(scanner.Text())
				}
				stdinDone <- scanner.Err()
			}()

			select {
			case <-sigCh:
				log.Info().Msg("received signal, flushing and stopping...")
			case err := <-stdinDone:
				if err != nil {
					log.Warn().Err(err).Msg("stdin read error")
				}
				log.Info().Msg("input closed, flushing and stopping...")
			}

			if err := h.Close(); err != nil {
				return fmt.Errorf("close handler: %w", err)
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.mailbuf/config.toml)")
	root.Flags().StringVar(&cfg.FromAddr, "from", cfg.FromAddr, "sender address")
	root.Flags().StringSliceVar(&cfg.ToAddrs, "to", cfg.ToAddrs, "recipient addresses")
	root.Flags().StringVar(&cfg.Subject, "subject", cfg.Subject, "subject line for every digest")

	root.Flags().StringVar(&cfg.Host, "host", cfg.Host, "SMTP host, optionally host:port")
	root.Flags().BoolVar(&cfg.UseTLS, "tls", cfg.UseTLS, "upgrade the session with STARTTLS")
	root.Flags().StringVar(&cfg.Username, "username", cfg.Username, "SMTP auth username")
	root.Flags().StringVar(&cfg.Password, "password", cfg.Password, "SMTP auth password (prefer MAILBUF_PASSWORD)")

	root.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "cadence for checking whether a send is due")
	root.Flags().DurationVar(&cfg.SendInterval, "send-interval", cfg.SendInterval, "minimum spacing between sends")
	root.Flags().DurationVar(&cfg.PollDurationMax, "poll-duration-max", cfg.PollDurationMax, "max time one drain cycle may accumulate records")

	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload intervals from the config file on change")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("mailbuf")
		os.Exit(1)
	}
}

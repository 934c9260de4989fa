// Package main is the entry point for the initiative tracker CLI
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/initiative-tracker/internal/config"
	"github.com/KirkDiggler/initiative-tracker/internal/errors"
)

var flags struct {
	session    string
	store      string
	redisAddr  string
	sqlitePath string
	logLevel   string
	envFile    string
}

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Initiative tracker for cooperative dungeon crawls",
	Long: `Track characters, monsters, summons and allies, order them by initiative
each round and keep the roster between sessions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errors.GetCode(err).ExitCode())
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.session, "session", "", "session id the roster is stored under (env TRACKER_SESSION)")
	pf.StringVar(&flags.store, "store", "", "cookie store: memory, redis or sqlite (env TRACKER_STORE)")
	pf.StringVar(&flags.redisAddr, "redis-addr", "", "redis endpoint (env TRACKER_REDIS_ADDR)")
	pf.StringVar(&flags.sqlitePath, "sqlite-path", "", "sqlite database file (env TRACKER_SQLITE_PATH)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (env TRACKER_LOG_LEVEL)")
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file to read before the environment")

	rootCmd.AddCommand(classesCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(removeSummonCmd)
	rootCmd.AddCommand(cookieCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(playCmd)
}

// loadConfig reads the environment and applies any flags that were set
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag  string
		value string
		field *string
	}{
		{"session", flags.session, &cfg.Session},
		{"store", flags.store, &cfg.Store},
		{"redis-addr", flags.redisAddr, &cfg.RedisAddr},
		{"sqlite-path", flags.sqlitePath, &cfg.SQLitePath},
		{"log-level", flags.logLevel, &cfg.LogLevel},
	}
	for _, o := range overrides {
		if rootCmd.PersistentFlags().Changed(o.flag) {
			*o.field = o.value
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

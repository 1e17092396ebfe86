// Package commands implements the rbpctl CLI commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ast0815/ipbus-software/internal/rbplog"
	"github.com/ast0815/ipbus-software/pkg/rbpconfig"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// flags holds the global flag values synced in PersistentPreRunE.
var flags struct {
	configPath string
	uri        string
	tablePath  string
	logLevel   string
	noColor    bool
}

var rootCmd = &cobra.Command{
	Use:   "rbpctl",
	Short: "RBP register-bus debug client",
	Long: `rbpctl is a command-line client for a single register-bus target.

Use it to resolve address-table paths, issue one-off reads and writes,
and inspect wire traffic, without writing a Go program against
pkg/rbpclient.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if flags.logLevel != "" {
			cfg.Logging.Level = flags.logLevel
		}
		return rbplog.Init(cfg.Logging)
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to config file (default: XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&flags.uri, "uri", "", "Target URI, e.g. ipbusudp-2.0://192.168.0.1:50001 (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.tablePath, "address-table", "", "Root address-table XML file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override logging.level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Accepted but has no effect; log color follows whether the output is a terminal")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(pickCmd)
}

// loadConfig loads configuration from flags.configPath (or the default
// location), layering in any --uri/--address-table overrides above the
// config file and environment before validation runs — so a config
// file that omits connection.uri/address_table.path doesn't fail to
// load just because those flags were meant to supply them.
func loadConfig() (*rbpconfig.Config, error) {
	overrides := map[string]any{}
	if flags.uri != "" {
		overrides["connection.uri"] = flags.uri
	}
	if flags.tablePath != "" {
		overrides["address_table.path"] = flags.tablePath
	}

	cfg, err := rbpconfig.Load(flags.configPath, overrides)
	if err != nil {
		return nil, fmt.Errorf("rbpctl: loading config: %w", err)
	}
	return cfg, nil
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}

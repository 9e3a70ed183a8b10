// cli.go holds the assist CLI entrypoint (Main), default constants, flags, and dispatch.
package assistcli

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const defaultTimeout = 30 * time.Second

// reservedSubcommands are first-arg names that must not be treated as send input (Cobra or our subcommands).
var reservedSubcommands = map[string]bool{"init": true, "send": true, "upload": true, "voice": true, "session": true, "help": true, "completion": true}

// Main runs the assist CLI: a named subcommand, or send (default) with positional input.
func Main() {
	args := os.Args[1:]
	// Only inject "send" when no reserved subcommand was given (so "assist completion" and "assist help" work).
	// Also skip injection when args contains only --help/-h so the root command shows its own help.
	onlyHelp := len(args) == 0
	if !onlyHelp {
		allHelp := true
		for _, a := range args {
			if a != "--help" && a != "-h" {
				allHelp = false
				break
			}
		}
		onlyHelp = allHelp
	}
	if !onlyHelp && !firstNonFlagIsReserved(args) {
		rootCmd.SetArgs(append([]string{"send"}, args...))
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// firstNonFlagIsReserved scans args, skipping flags and their values, and returns
// true if the first positional argument is a reserved subcommand name.
func firstNonFlagIsReserved(args []string) bool {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			// Explicit end of flags; next arg would be positional.
			if i+1 < len(args) {
				return reservedSubcommands[args[i+1]]
			}
			return false
		}
		if strings.HasPrefix(a, "--") {
			// Long flag: if it has no '=' it consumes the next token as its value.
			if !strings.Contains(a, "=") {
				i++ // skip value
			}
			continue
		}
		if strings.HasPrefix(a, "-") && len(a) > 1 {
			// Short flag: skip (simplified: assume it consumes next token if no value attached).
			if len(a) == 2 {
				i++ // skip value
			}
			continue
		}
		// First non-flag argument found.
		return reservedSubcommands[a]
	}
	return false
}

var rootCmd = &cobra.Command{
	Use:   "assist",
	Short: "Local chat assistant CLI with persistent sessions.",
	Long: `Assist is a local chat assistant CLI. Messages, file uploads, and voice notes
go through a persistent session history; replies arrive after a short delay.
State is stored in SQLite by default; Valkey, Postgres, and NATS are optional.

  Quickstart:
    assist init                       # scaffold .assist/ with config
    assist hello there                # one-shot message (send is the default)
    assist upload ./report.pdf        # attach a file to the conversation
    assist session list               # list recent sessions (* = active)

  Backends (edit .assist/config.yaml after 'assist init'):
    SQLite (default):  db: .assist/assist.db
    Valkey:            set valkey_addr (e.g. localhost:6379)
    Postgres:          set postgres_dsn
    NATS fanout:       set nats_url to broadcast state snapshots`,
	SilenceUsage: true,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold .assist/ (config file).",
	Long:  `Create .assist/config.yaml. Use --force to overwrite an existing file.`,
	RunE:  runInitCmd,
}

func init() {
	// Backend flags on root so every subcommand can override config.
	f := rootCmd.PersistentFlags()
	f.String("db", "", "SQLite database path (default: .assist/assist.db)")
	f.String("valkey", "", "Valkey address (e.g. localhost:6379); overrides SQLite when set")
	f.String("postgres", "", "Postgres DSN; overrides SQLite when set")
	f.String("nats", "", "NATS URL for state snapshot fanout (default: in-process only)")
	f.Duration("timeout", defaultTimeout, "Maximum time to wait for a reply (e.g. 30s, 2m)")
	f.Bool("trace", false, "Enable operation telemetry on stderr")
	f.Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(initCmd, sendCmd, uploadCmd, voiceCmd, sessionCmd)

	rootCmd.InitDefaultHelpCmd() // so "assist help" is handled by Cobra, not passed as send input
	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing files")
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")
	RunInit(force)
	return nil
}

// init.go implements the assist init subcommand (scaffold .assist/).
package assistcli

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

//go:embed config.yaml
var initConfig string

// RunInit scaffolds .assist/ (config file). If force is true, overwrites existing files.
func RunInit(force bool) {
	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("Cannot get current directory", "error", err)
		os.Exit(1)
	}
	assistDir := filepath.Join(cwd, ".assist")
	if err := os.MkdirAll(assistDir, 0750); err != nil {
		slog.Error("Failed to create .assist directory", "error", err)
		os.Exit(1)
	}
	configPath := filepath.Join(assistDir, "config.yaml")
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			fmt.Printf("  %s already exists (use --force to overwrite)\n", configPath)
			return
		}
	}
	if err := os.WriteFile(configPath, []byte(initConfig), 0644); err != nil {
		slog.Error("Failed to write file", "path", configPath, "error", err)
		os.Exit(1)
	}
	fmt.Printf("  Created %s\n", configPath)
	fmt.Println("Done. History is stored in .assist/assist.db by default.")
	fmt.Println("Next:")
	fmt.Println("  assist hello there")
	fmt.Println("  assist session list")
	fmt.Println("To use Valkey, Postgres, or NATS, uncomment the matching lines in .assist/config.yaml.")
}

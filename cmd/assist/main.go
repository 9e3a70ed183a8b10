// Assist: local chat assistant CLI with persistent sessions.
// SQLite by default; Valkey, Postgres, and NATS are optional backends.
package main

import "github.com/modernweb/assist/internal/assistcli"

func main() {
	assistcli.Main()
}

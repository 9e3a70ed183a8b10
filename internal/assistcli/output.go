// output.go holds CLI output helpers.
package assistcli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/modernweb/assist/sessionstore"
)

// printMessage prints a message either as prose or as JSON.
func printMessage(m sessionstore.Message, asJSON bool) {
	if asJSON {
		b, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			fmt.Println(m.Text)
			return
		}
		fmt.Println(string(b))
		return
	}
	fmt.Println(m.Text)
}

// formatRelative renders a timestamp as a compact age (e.g. "3m ago", "2h ago").
func formatRelative(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

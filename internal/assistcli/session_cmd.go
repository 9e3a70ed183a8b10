// session_cmd.go — assist session subcommand tree (new, list, switch, delete, show).
package assistcli

import (
	"fmt"
	"strings"
	"time"

	"github.com/modernweb/assist/sessionstore"
	"github.com/spf13/cobra"
)

// sessionCmd is the parent "assist session" command.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage chat sessions (new, list, switch, delete, show).",
	Long: `Create and switch chat sessions. Each session keeps its own history;
only the ten most recent sessions are retained.

  assist session new          create a session and make it active
  assist session list         list all sessions (* = active)
  assist session switch <id>  switch the active session (id prefix or title)
  assist session delete <id>  delete a session and its messages
  assist session show         print the active session's conversation`,
	SilenceUsage: true,
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new session and make it active.",
	Args:  cobra.NoArgs,
	RunE:  runSessionNew,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions (* = active).",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionSwitchCmd = &cobra.Command{
	Use:   "switch <id>",
	Short: "Switch the active session by id prefix or title.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionSwitch,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session and all its messages.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active session's conversation.",
	Args:  cobra.NoArgs,
	RunE:  runSessionShow,
}

func init() {
	sessionCmd.AddCommand(sessionNewCmd, sessionListCmd, sessionSwitchCmd, sessionDeleteCmd, sessionShowCmd)
}

// resolveSession matches arg against session id prefixes first, then exact titles.
func resolveSession(sessions []sessionstore.Session, arg string) (sessionstore.Session, error) {
	var byPrefix []sessionstore.Session
	for _, s := range sessions {
		if strings.HasPrefix(s.ID, arg) {
			byPrefix = append(byPrefix, s)
		}
	}
	if len(byPrefix) == 1 {
		return byPrefix[0], nil
	}
	if len(byPrefix) > 1 {
		return sessionstore.Session{}, fmt.Errorf("session id prefix %q is ambiguous (%d matches)", arg, len(byPrefix))
	}
	for _, s := range sessions {
		if s.Title == arg {
			return s, nil
		}
	}
	return sessionstore.Session{}, fmt.Errorf("session %q not found; run 'assist session list' to see available sessions", arg)
}

func runSessionNew(cmd *cobra.Command, _ []string) error {
	ctx, eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.cleanup()

	id, err := eng.service.StartNewSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	fmt.Printf("Created session %s. Now active.\n", id[:8])
	return nil
}

func runSessionList(cmd *cobra.Command, _ []string) error {
	ctx, eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.cleanup()

	snapshot := eng.service.Snapshot(ctx)
	if len(snapshot.Sessions) == 0 {
		fmt.Println("No sessions yet. Run: assist session new")
		return nil
	}
	for _, s := range snapshot.Sessions {
		prefix := "  "
		if s.ID == snapshot.ActiveID {
			prefix = "* "
		}
		fmt.Printf("%s%s  %-30s (%d messages, %s)\n", prefix, s.ID[:8], s.Title, len(s.Messages), formatRelative(s.LastActivity))
	}
	return nil
}

func runSessionSwitch(cmd *cobra.Command, args []string) error {
	ctx, eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.cleanup()

	target, err := resolveSession(eng.store.Sessions(), args[0])
	if err != nil {
		return err
	}
	if err := eng.service.SwitchSession(ctx, target.ID); err != nil {
		return fmt.Errorf("failed to switch session: %w", err)
	}
	fmt.Printf("Switched to session %s (%s).\n", target.ID[:8], target.Title)
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	ctx, eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.cleanup()

	target, err := resolveSession(eng.store.Sessions(), args[0])
	if err != nil {
		return err
	}
	wasActive := target.ID == eng.store.ActiveID()
	if err := eng.service.DeleteSession(ctx, target.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if wasActive {
		fmt.Printf("Deleted session %s (was active; a fresh session is now active).\n", target.ID[:8])
	} else {
		fmt.Printf("Deleted session %s.\n", target.ID[:8])
	}
	return nil
}

func runSessionShow(cmd *cobra.Command, _ []string) error {
	_, eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.cleanup()

	active, err := eng.store.Active()
	if err != nil {
		return fmt.Errorf("no active session: %w", err)
	}
	if len(active.Messages) == 0 {
		fmt.Printf("Session %q has no messages yet.\n", active.Title)
		return nil
	}

	fmt.Printf("━━━━ Session: %s ━━━━\n", active.Title)
	for _, m := range active.Messages {
		ts := ""
		if !m.Timestamp.IsZero() {
			ts = m.Timestamp.Format(time.RFC3339)
		}
		if ts != "" {
			fmt.Printf("[%s] %s:\n", ts, m.Sender)
		} else {
			fmt.Printf("%s:\n", m.Sender)
		}
		fmt.Printf("  %s\n", m.Text)
		if m.Attachment != nil {
			fmt.Printf("  (attachment: %s, %s, %d bytes)\n", m.Attachment.Name, m.Attachment.MimeType, m.Attachment.SizeBytes)
		}
		fmt.Println()
	}
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━\n")
	return nil
}

// send_cmd.go — assist send (default subcommand): send a message and wait for the reply.
package assistcli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/modernweb/assist/chatservice"
	"github.com/modernweb/assist/sessionstore"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send [text...]",
	Short: "Send a message and print the reply (default when no subcommand is given).",
	Long:  `Send a message to the active session. You can pass text as positional args (e.g. assist hi) or pipe it on stdin.`,
	Args:  cobra.ArbitraryArgs,
	RunE:  runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		// No positional input: try stdin if piped, else show help.
		if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		}
		if strings.TrimSpace(text) == "" {
			_ = cmd.Root().Usage()
			return nil
		}
	}

	ctx, eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.cleanup()

	snapshot, err := eng.awaitSnapshot(ctx, func() error {
		_, err := eng.service.SendMessage(ctx, text)
		return err
	}, func(s chatservice.Snapshot) bool {
		return s.AwaitingReplies == 0
	})
	if err != nil {
		return err
	}

	reply, ok := lastAssistantMessage(snapshot)
	if !ok {
		return fmt.Errorf("no reply arrived")
	}
	printMessage(reply, eng.json)
	return nil
}

// lastAssistantMessage returns the newest assistant message in the active session.
func lastAssistantMessage(snapshot chatservice.Snapshot) (sessionstore.Message, bool) {
	for _, s := range snapshot.Sessions {
		if s.ID != snapshot.ActiveID {
			continue
		}
		for i := len(s.Messages) - 1; i >= 0; i-- {
			if s.Messages[i].Sender == sessionstore.SenderAssistant {
				return s.Messages[i], true
			}
		}
	}
	return sessionstore.Message{}, false
}

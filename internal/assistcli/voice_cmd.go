// voice_cmd.go — assist voice: submit a voice note for transcription.
package assistcli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/modernweb/assist/chatservice"
	"github.com/spf13/cobra"
)

var voiceCmd = &cobra.Command{
	Use:   "voice <path>",
	Short: "Transcribe a voice note into suggested input.",
	Long: `Submit a recorded voice note. The transcript fills the pending input field
rather than being sent; pass --send to send it as a message right away.`,
	Args: cobra.ExactArgs(1),
	RunE: runVoice,
}

func init() {
	voiceCmd.Flags().Bool("send", false, "Send the transcript as a message after transcription")
}

func runVoice(cmd *cobra.Command, args []string) error {
	path := args[0]
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot stat %q: %w", path, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	ctx, eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.cleanup()

	capture := chatservice.VoiceCapture{
		MimeType:   mimeType,
		SizeBytes:  fi.Size(),
		ContentRef: path,
	}

	_, err = eng.awaitSnapshot(ctx, func() error {
		return eng.service.SubmitVoiceCapture(ctx, capture)
	}, func(s chatservice.Snapshot) bool {
		return !s.Transcribing && s.PendingInput != ""
	})
	if err != nil {
		return err
	}

	transcript := eng.service.TakePendingInput(ctx)
	if transcript == "" {
		return fmt.Errorf("transcription produced no text")
	}

	sendIt, _ := cmd.Flags().GetBool("send")
	if !sendIt {
		fmt.Printf("Transcript: %s\n", transcript)
		fmt.Println("Run 'assist send' with this text, or re-run with --send to send it directly.")
		return nil
	}

	snapshot, err := eng.awaitSnapshot(ctx, func() error {
		_, err := eng.service.SendMessage(ctx, transcript)
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
	fmt.Printf("You (transcribed): %s\n", transcript)
	printMessage(reply, eng.json)
	return nil
}

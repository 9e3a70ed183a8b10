// upload_cmd.go — assist upload: attach a file to the active session.
package assistcli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/modernweb/assist/chatservice"
	"github.com/modernweb/assist/sessionstore"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Attach a file to the active session and print the reply.",
	Long:  `Attach a file. Only name, type, and size travel with the message; content stays on disk.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot stat %q: %w", path, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%q is a directory", path)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	ctx, eng, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer eng.cleanup()

	att := sessionstore.Attachment{
		Name:       filepath.Base(path),
		MimeType:   mimeType,
		SizeBytes:  fi.Size(),
		ContentRef: path,
	}

	snapshot, err := eng.awaitSnapshot(ctx, func() error {
		_, err := eng.service.AttachFile(ctx, att)
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

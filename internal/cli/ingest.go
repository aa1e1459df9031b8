package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/omriShneor/meeting_assistant/internal/proposal"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Extract meeting details from a raw email without sending anything",
	Long: `Run meeting-request extraction on a raw RFC 5322 email (or "-" for
stdin) and print the proposal that would be created. No email is sent and
nothing is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

type ingestPreview struct {
	*proposal.Proposal
	ResolvedStart time.Time `json:"resolved_start"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	var (
		raw []byte
		err error
	)
	if args[0] == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	p, err := proposal.NewWorkflow().Ingest(string(raw))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(ingestPreview{
		Proposal:      p,
		ResolvedStart: proposal.ResolveStart(p.ProposedTime, time.Now()),
	})
}

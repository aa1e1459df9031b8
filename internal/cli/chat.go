package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/omriShneor/meeting_assistant/internal/dialogue"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: `Run a dialogue session against the local engine. Each line read from
stdin is one chat turn. Type "exit" or send EOF to quit.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd.ErrOrStderr(), false)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	a.startWatcher(ctx)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	return chatLoop(cmd, a.engine, cmd.InOrStdin(), interactive)
}

// chatLoop feeds each input line to engine as one turn of a single session.
func chatLoop(cmd *cobra.Command, engine *dialogue.Engine, in io.Reader, interactive bool) error {
	out := cmd.OutOrStdout()
	sessionID := uuid.NewString()

	if interactive {
		fmt.Fprintln(out, "Meeting Assistant. Ask me to schedule a meeting or send an email.")
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := engine.HandleTurn(cmd.Context(), sessionID, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, reply.Text)
		if reply.ShowForm {
			fmt.Fprintln(out, "(tip: POST /schedule accepts subject, date, time, duration and participants directly)")
		}
	}

	return scanner.Err()
}

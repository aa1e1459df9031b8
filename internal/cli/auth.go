package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/omriShneor/meeting_assistant/internal/gcal"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Connect a Google account for Calendar and Gmail",
	Long: `Print the Google consent URL, then read the authorization code and
store the token at GOOGLE_TOKEN_FILE.`,
	RunE: runAuth,
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := gcal.NewClient(cfg.GoogleCredentialsFile, cfg.GoogleTokenFile, cfg.BaseURL+gcal.CallbackPath)
	if err != nil {
		return fmt.Errorf("failed to load Google credentials: %w", err)
	}

	out := cmd.OutOrStdout()
	if client.IsAuthenticated() {
		fmt.Fprintln(out, "Google account already connected. Continuing will replace the stored token.")
	}

	fmt.Fprintln(out, "Open this URL in your browser and approve access:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, client.AuthURL())
	fmt.Fprintln(out)
	fmt.Fprint(out, "Paste the code parameter from the redirect URL: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	code, err := reader.ReadString('\n')
	if err != nil && code == "" {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("no authorization code entered")
	}

	if err := client.ExchangeCode(cmd.Context(), code); err != nil {
		return err
	}

	fmt.Fprintf(out, "Google account connected. Token saved to %s\n", cfg.GoogleTokenFile)
	return nil
}

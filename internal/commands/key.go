package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moasq/nanogen/internal/secrets"
	"github.com/moasq/nanogen/internal/terminal"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the Gemini API key",
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Save the Gemini API key",
	Long:  "Saves the key to the OS keychain (or the file fallback). Without an argument the key is read from a masked prompt, or from stdin when it is not a terminal.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			k, err := promptKey()
			if err != nil {
				return err
			}
			key = k
		}
		if strings.TrimSpace(key) == "" {
			return errors.New("no key given")
		}
		if err := current.svc.SaveCredential(key); err != nil {
			return err
		}
		terminal.Success(fmt.Sprintf("API key saved to %s", secrets.Describe(current.secrets)))
		return nil
	},
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the masked API key and where it comes from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := current.svc.Session()
		terminal.Detail("API key", secrets.Mask(sess.Credential))
		if sess.Credential != "" {
			terminal.Detail("Source", current.keySource())
		}
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := current.svc.ClearCredential(); err != nil {
			return err
		}
		terminal.Success("API key deleted")
		if current.cfg.APIKeyOverride != "" {
			terminal.Info("GEMINI_API_KEY is still set in the environment.")
		}
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyShowCmd)
	keyCmd.AddCommand(keyClearCmd)
}

// promptKey asks for the key without echo, falling back to a plain line
// from stdin when it is piped.
func promptKey() (string, error) {
	key, err := terminal.ReadSecret("Gemini API key")
	if errors.Is(err, terminal.ErrNotTerminal) {
		return terminal.ReadValue(os.Stdin, "Gemini API key", "")
	}
	return key, err
}

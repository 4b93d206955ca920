// Package authcmder provides the auth command for storing the quill API token.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quillhq/quill/pkg/cliui"
	"github.com/quillhq/quill/pkg/credentials"
	"github.com/quillhq/quill/pkg/utils"
)

const authLongDesc string = `Store the API token used to talk to the quill service.

The token is stored in credentials.toml in the .quill/ directory and sent as
a bearer credential with every request. The ` + credentials.EnvVar + `
environment variable, when set, takes precedence over the stored token.

Examples:
  quill auth                Prompt for the API token
  quill auth --show         Show whether a token is stored
  quill auth --remove       Remove the stored token
  echo $TOKEN | quill auth  Pipe the token from stdin`

const authShortDesc string = "Store the quill API token"

func NewAuthCmd() *cobra.Command {
	var showFlag bool
	var removeFlag bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			switch {
			case showFlag:
				return runShow(configDir)
			case removeFlag:
				return runRemove(configDir)
			default:
				return runAuth(configDir)
			}
		},
	}

	cmd.Flags().BoolVar(&showFlag, "show", false, "Show whether a token is stored")
	cmd.Flags().BoolVar(&removeFlag, "remove", false, "Remove the stored token")

	return cmd
}

func runAuth(configDir string) error {
	token, err := readToken()
	if err != nil {
		return err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("API token cannot be empty")
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetToken(token); err != nil {
		return err
	}

	fmt.Printf("\n  %s Stored API token %s\n\n",
		cliui.SuccessMark,
		cliui.DimStyle.Render("("+mgr.GetTarget()+")"),
	)

	return nil
}

func runShow(configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if env := strings.TrimSpace(os.Getenv(credentials.EnvVar)); env != "" {
		fmt.Printf("\n  %s Using token from %s %s\n\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(credentials.EnvVar),
			cliui.DimStyle.Render("("+utils.Truncate(env, 8)+")"),
		)
		return nil
	}

	token, err := mgr.GetToken()
	if err != nil {
		return err
	}

	if strings.TrimSpace(token) == "" {
		fmt.Printf("\n  %s No stored token.\n", cliui.DimStyle.Render("●"))
		fmt.Printf("  Use 'quill auth' to store one.\n\n")
		return nil
	}

	fmt.Printf("\n  %s Token stored %s\n\n",
		cliui.SuccessMark,
		cliui.DimStyle.Render("("+utils.Truncate(token, 8)+", "+mgr.GetTarget()+")"),
	)

	return nil
}

func runRemove(configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveToken(); err != nil {
		return err
	}

	fmt.Printf("\n  %s Removed stored token.\n\n", cliui.SuccessMark)

	return nil
}

// readToken reads the API token from stdin. If stdin is a pipe, it reads the
// first line. Otherwise, it prompts interactively with hidden input.
func readToken() (string, error) {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("checking stdin: %w", err)
	}

	// Piped input
	if (fi.Mode() & os.ModeCharDevice) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return "", errors.New("no input received on stdin")
	}

	// Interactive terminal
	fmt.Printf("Enter API token (%s): ", credentials.EnvVar)

	tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("reading API token: %w", err)
	}

	return string(tokenBytes), nil
}

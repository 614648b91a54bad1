package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitanomongolomon/gmm-site/internal/apiclient"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start an admin session",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the admin session",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "admin password (defaults to $GMM_ADMIN_PASSWORD, then stdin)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	password := loginPassword
	if password == "" {
		password = os.Getenv("GMM_ADMIN_PASSWORD")
	}
	if password == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("no password given")
		}
		password = strings.TrimSpace(line)
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	session, err := client.Login(cmd.Context(), password)
	if err != nil {
		return err
	}
	path, err := apiclient.SessionPath()
	if err != nil {
		return err
	}
	if err := apiclient.SaveToken(path, session.Token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "logged in; session expires %s\n", session.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	// The local token goes away even if the server cannot be reached.
	logoutErr := client.Logout(cmd.Context())
	path, err := apiclient.SessionPath()
	if err != nil {
		return err
	}
	if err := apiclient.ClearToken(path); err != nil {
		return err
	}
	if logoutErr != nil {
		return fmt.Errorf("session cleared locally; server logout failed: %w", logoutErr)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "logged out")
	return nil
}

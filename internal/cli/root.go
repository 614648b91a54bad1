package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/apiclient"
)

const defaultServer = "http://localhost:8080"

var (
	serverURL string
	assumeYes bool
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:           "gmmctl",
	Short:         "Operator console for the GMM community site",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	server := os.Getenv("GMM_SERVER")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", server, "site API base URL")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "approve destructive actions without asking")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log background refreshes")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(updatesCmd)
	rootCmd.AddCommand(ogCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(chatCmd)
}

// newClient builds an API client carrying the saved session, if any.
func newClient() (*apiclient.Client, error) {
	path, err := apiclient.SessionPath()
	if err != nil {
		return nil, err
	}
	token, err := apiclient.LoadToken(path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return apiclient.New(serverURL, token), nil
}

func consoleLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// confirm asks a yes/no question on in unless --yes was given.
func confirm(in io.Reader, out io.Writer, question string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}

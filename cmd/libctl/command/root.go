package command

// root.go defines the root command and the global flags of libctl.

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL string // API server URL for the client commands
	token  string // session token for the client commands
)

var rootCmd = &cobra.Command{
	Use:   "libctl",
	Short: "libctl - School Library administration tool",
	Long: `libctl operates a School Library deployment.

Database commands (migrate, seed, notify-overdue) read the same environment
as the API server (.env, DATABASE_URL, NOTIFY_CHANNEL, ...).
Client commands (books, borrow, return, stats) talk to a running API server.

Use "libctl [command] --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("LIBRARY_API_URL", "http://localhost:8080"), "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("LIBRARY_TOKEN"), "session token sent as a Bearer header")

	rootCmd.AddCommand(migrateCmd, seedCmd, notifyOverdueCmd)
	rootCmd.AddCommand(booksCmd, borrowCmd, returnCmd, statsCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

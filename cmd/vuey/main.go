package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	vuerrors "github.com/vango-dev/vuey/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┬ ┬┌─┐┬ ┬
  ╚╗╔╝│ │├┤ └┬┘
   ╚╝ └─┘└─┘ ┴
`

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	session    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		vuerrors.Fprint(os.Stderr, vuerrors.FromError(err, "V060"))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "vuey",
		Short: "Inspect and edit persisted vuey stores",
		Long: `vuey manages the records that named stores persist.

Records live under the "STORE/<name>" key of the session or durable
backend configured in vuey.json. Commands:

  • ls, get, set and rm operate on raw records
  • serve starts the HTTP inspector over every known store
  • version prints build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to vuey.json (default: nearest in the working directory or its parents)")
	rootCmd.PersistentFlags().BoolVar(&flags.session, "session", false, "Operate on the session backend instead of the durable one")

	rootCmd.AddCommand(
		lsCmd(flags),
		getCmd(flags),
		setCmd(flags),
		rmCmd(flags),
		serveCmd(flags),
		versionCmd(),
	)

	return rootCmd
}

// printBanner prints the vuey ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

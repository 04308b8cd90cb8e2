package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/shelf/internal/app"
	"github.com/five82/shelf/internal/config"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	prefsPath  string
	pollEvery  int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "shelf",
	Short:        "Terminal client for a BookTracker backend",
	Long:         "shelf tracks books and reading sessions against a BookTracker backend, in a TUI or from the command line.",
	Version:      version,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default ~/.config/shelf/config.toml)")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", "", "Path to TUI preferences (default ~/.config/shelf/prefs.toml)")
	rootCmd.Flags().IntVar(&pollEvery, "poll", 0, "Refresh interval in seconds (default from config)")
	tuiCmd.Flags().IntVar(&pollEvery, "poll", 0, "Refresh interval in seconds (default from config)")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(booksCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(paceCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "shelf", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config to ~/.config/shelf/config.toml",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.WriteDefault(configPath)
		if err != nil {
			if path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Config already exists: %s\n", path)
				return nil
			}
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created config: %s\n", path)
		fmt.Fprintln(out, "Set api_url, then run `shelf login`.")
		return nil
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the interactive dashboard (default)",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	return app.Run(cmd.Context(), app.Options{
		ConfigPath: configPath,
		PrefsPath:  prefsPath,
		PollEvery:  pollEvery,
		Verbose:    verbose,
	})
}

// openEnv assembles config, logger, cache and client for one command.
func openEnv() (*app.Env, error) {
	return app.Open(app.Options{ConfigPath: configPath, PrefsPath: prefsPath, Verbose: verbose})
}

func parseBookID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid book id %q", arg)
	}
	return id, nil
}

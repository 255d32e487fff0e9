package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/fang"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

var (
	BuildVersion   = "master"
	BuildCommit    = "00000000"
	BuildDate      = time.Now().Format("2006-01-02T15:04:05Z")
	BuildGoVersion = runtime.Version()
	cfgFile        string
	rootCmd        = &cobra.Command{
		Use:   "squad-stats <statefile> <logfile>",
		Short: "Squad server log statistics",
		Long: `squad-stats - Folds a Squad dedicated server log into per session and lifetime player statistics.

The state file is read before processing and rewritten afterwards, so the same log, or a newer
copy of it, can be processed repeatedly without counting anything twice.`,
		Args: cobra.ExactArgs(2),
		RunE: run,
	}

	versionCmd = &cobra.Command{
		Use:               "version",
		Short:             "Print version information",
		Long:              "Print detailed version information about squad-stats",
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		Run:               version,
	}
)

var errApp = errors.New("application error")

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file path, defaults to searching the user config dir and working directory")
	rootCmd.AddCommand(versionCmd)

	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		slog.Error("Exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func version(_ *cobra.Command, _ []string) {
	fmt.Printf("squad-stats - Squad log statistics\n\n") //nolint:forbidigo
	fmt.Printf("  Version: %s\n", BuildVersion)          //nolint:forbidigo
	fmt.Printf("  Commit:  %s\n", BuildCommit)           //nolint:forbidigo
	fmt.Printf("  Built:   %s\n", BuildDate)             //nolint:forbidigo
	fmt.Printf("  Runtime: %s\n\n", BuildGoVersion)      //nolint:forbidigo
}

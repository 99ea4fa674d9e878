// Package cli implements the cobra command surface. Commands hold no
// business logic; they parse input, call the injected driving services,
// and print results.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driving"
	"github.com/metatext-labs/metatext-cli/internal/logger"
)

// version is the build version, overridden at link time.
var version = "dev"

// Injected services. The composition root sets these before Execute.
var (
	workspace          driving.ChunkWorkspace
	compressionService driving.CompressionService
	authService        driving.AuthService
	configStore        driven.ConfigStore
)

// verbose enables debug logging on stderr.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "metatext",
	Short: "Annotate and rework documents chunk by chunk",
	Long: `Metatext is a client for the metatext annotation backend.

A metatext is a working copy of a document, divided into chunks. Each
chunk carries your notes, summaries, comparisons, and generated
compressions. Open a metatext, then list, annotate, split, or merge
its chunks - or launch the interactive TUI.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// SetServices injects the driving services the commands depend on.
func SetServices(ws driving.ChunkWorkspace, compressions driving.CompressionService, auth driving.AuthService) {
	workspace = ws
	compressionService = compressions
	authService = auth
}

// SetConfigStore injects the config store used for the current
// metatext and connection settings.
func SetConfigStore(store driven.ConfigStore) {
	configStore = store
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// currentMetaText returns the metatext selected by `metatext open`.
func currentMetaText() (int64, error) {
	if configStore == nil {
		return 0, fmt.Errorf("config store not configured")
	}
	id := int64(configStore.GetInt(driven.ConfigKeyCurrentMetaText))
	if id == 0 {
		return 0, fmt.Errorf("no metatext open; run 'metatext open <metatext-id>' first")
	}
	return id, nil
}

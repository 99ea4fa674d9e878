// Command metatext is the terminal client for the metatext reading
// workspace. It wires the backend API client, the local SQLite store,
// and the core services into the CLI, TUI, and MCP frontends.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/metatext-labs/metatext-cli/internal/adapters/driven/api"
	"github.com/metatext-labs/metatext-cli/internal/adapters/driven/config/file"
	"github.com/metatext-labs/metatext-cli/internal/adapters/driven/storage/sqlite"
	"github.com/metatext-labs/metatext-cli/internal/adapters/driving/cli"
	"github.com/metatext-labs/metatext-cli/internal/cache"
	"github.com/metatext-labs/metatext-cli/internal/core/domain"
	"github.com/metatext-labs/metatext-cli/internal/core/ports/driven"
	"github.com/metatext-labs/metatext-cli/internal/core/services"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	config, err := file.NewConfigStore("")
	if err != nil {
		fatal("loading configuration: %v", err)
	}

	styleStore, err := file.NewStyleStore("")
	if err != nil {
		fatal("opening style store: %v", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		fatal("opening local store: %v", err)
	}
	defer store.Close() //nolint:errcheck

	baseURL := config.GetString(driven.ConfigKeyAPIBaseURL)
	if baseURL == "" {
		baseURL = api.DefaultBaseURL
	}
	token := config.GetString(driven.ConfigKeyAPIToken)

	readTTL := config.GetDuration(driven.ConfigKeyCacheTTL)
	if readTTL <= 0 {
		readTTL = cache.DefaultTTL
	}
	responseCache := cache.New()
	if size := config.GetInt(driven.ConfigKeyCacheSize); size > 0 {
		responseCache = cache.NewWithSize(size)
	}

	clientOpts := []api.Option{api.WithCache(responseCache, readTTL)}
	if token != "" {
		clientOpts = append(clientOpts, api.WithToken(token))
	}
	client := api.NewClient(baseURL, clientOpts...)
	users := api.NewUserProvider(client, token != "")

	bridge := services.NewSessionBridge(store.SelectionStore(), client, users)

	var wsOpts []services.WorkspaceOption
	if window := config.GetDuration(driven.ConfigKeyDebounceWindow); window > 0 {
		wsOpts = append(wsOpts, services.WithDebounceWindow(window))
	}
	workspace := services.NewChunkWorkspace(client, bridge, wsOpts...)
	defer workspace.Close() //nolint:errcheck

	compressions := services.NewCompressionService(client, styleStore)

	// Login verifies a candidate token against the backend before it is
	// stored, using a throwaway client so the shared one keeps the old
	// credentials until verification succeeds.
	verify := func(ctx context.Context, candidate string) (*domain.User, error) {
		probe := api.NewClient(baseURL, api.WithToken(candidate))
		return api.NewUserProvider(probe, true).CurrentUser(ctx)
	}
	auth := services.NewAuthService(config, store.IdentityStore(), verify)

	cli.SetVersion(version)
	cli.SetConfigStore(config)
	cli.SetServices(workspace, compressions, auth)
	cli.Execute()
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "metatext: "+format+"\n", args...)
	os.Exit(1)
}

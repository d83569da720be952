package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mergevet/mergevet/internal/config"
	"github.com/mergevet/mergevet/internal/projctx"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage the cached project context",
}

var contextShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current project context",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSetup(func(ctx context.Context, cfg config.Config, root string) error {
			project, info, err := contextManager(cfg, root).Get(ctx, root, projctx.Options{
				TTL:           cfg.Cache.TTL,
				CriticalPaths: cfg.CriticalPaths,
			})
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(project, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			if info.UsedCache {
				fmt.Fprintf(os.Stderr, "served from cache (built %s)\n", info.CacheTimestamp.Format("2006-01-02 15:04"))
			} else {
				fmt.Fprintln(os.Stderr, "freshly synthesized")
			}
			return nil
		})
	},
}

var contextRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the project context, ignoring the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSetup(func(ctx context.Context, cfg config.Config, root string) error {
			project, _, err := contextManager(cfg, root).Get(ctx, root, projctx.Options{
				TTL:           cfg.Cache.TTL,
				ForceRefresh:  true,
				CriticalPaths: cfg.CriticalPaths,
			})
			if err != nil {
				return err
			}
			fmt.Printf("project context rebuilt (fingerprint %.12s...)\n", project.Fingerprint)
			return nil
		})
	},
}

var contextClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached project contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSetup(func(ctx context.Context, cfg config.Config, root string) error {
			store, err := projctx.NewFileStore(cacheDir(cfg, root))
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Printf("cleared %s\n", store.Dir())
			return nil
		})
	},
}

func contextManager(cfg config.Config, root string) *projctx.Manager {
	store, err := projctx.NewFileStore(cacheDir(cfg, root))
	if err != nil {
		// Fall back to memory; the command still works, just without
		// persistence.
		return projctx.NewManager(projctx.NewMemStore())
	}
	return projctx.NewManager(store)
}

func init() {
	contextCmd.AddCommand(contextShowCmd)
	contextCmd.AddCommand(contextRefreshCmd)
	contextCmd.AddCommand(contextClearCmd)
}

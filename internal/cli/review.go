package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/mergevet/mergevet/internal/cache"
	"github.com/mergevet/mergevet/internal/config"
	"github.com/mergevet/mergevet/internal/diff"
	"github.com/mergevet/mergevet/internal/gitctx"
	"github.com/mergevet/mergevet/internal/github"
	"github.com/mergevet/mergevet/internal/llm"
	"github.com/mergevet/mergevet/internal/model"
	"github.com/mergevet/mergevet/internal/output"
	"github.com/mergevet/mergevet/internal/projctx"
	"github.com/mergevet/mergevet/internal/review"
)

// Shared review flags.
var (
	flagFormat   string
	flagOut      string
	flagRefresh  bool
	flagMaxFull  int
	flagExclude  string
	flagNoRedact bool
	flagUnified  bool
	flagRepo     string
	flagPost     bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "", "Output format (markdown, json, pr-comment)")
	cmd.PersistentFlags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.PersistentFlags().BoolVar(&flagRefresh, "refresh", false, "Rebuild the project context even if cached")
	cmd.PersistentFlags().IntVar(&flagMaxFull, "max-full", 0, "Maximum number of files reviewed in full")
	cmd.PersistentFlags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated)")
	cmd.PersistentFlags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review code changes and decide if they are safe to merge",
}

var reviewStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Review staged changes (index vs HEAD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSetup(func(ctx context.Context, cfg config.Config, root string) error {
			entries, err := gitctx.Staged(cfg.ExcludePatterns)
			if err != nil {
				return err
			}
			return runReview(ctx, cfg, root, entries)
		})
	},
}

var reviewUnstagedCmd = &cobra.Command{
	Use:   "unstaged",
	Short: "Review unstaged changes (working tree vs index)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSetup(func(ctx context.Context, cfg config.Config, root string) error {
			entries, err := gitctx.Unstaged(cfg.ExcludePatterns)
			if err != nil {
				return err
			}
			return runReview(ctx, cfg, root, entries)
		})
	},
}

var reviewCommitCmd = &cobra.Command{
	Use:   "commit <sha>",
	Short: "Review a specific commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSetup(func(ctx context.Context, cfg config.Config, root string) error {
			entries, err := gitctx.Commit(args[0], cfg.ExcludePatterns)
			if err != nil {
				return err
			}
			return runReview(ctx, cfg, root, entries)
		})
	},
}

var flagMergeBase bool

var reviewRangeCmd = &cobra.Command{
	Use:   "range <revRange>",
	Short: "Review a revision range (e.g., origin/main..HEAD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSetup(func(ctx context.Context, cfg config.Config, root string) error {
			entries, err := gitctx.Range(args[0], flagMergeBase, cfg.ExcludePatterns)
			if err != nil {
				return err
			}
			return runReview(ctx, cfg, root, entries)
		})
	},
}

var reviewFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Review a change set from a file (JSON entries, or unified diff with --unified; - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSetup(func(ctx context.Context, cfg config.Config, root string) error {
			entries, err := readEntries(args[0], flagUnified)
			if err != nil {
				return err
			}
			return runReview(ctx, cfg, root, gitctx.Filter(entries, cfg.ExcludePatterns))
		})
	},
}

var reviewPRCmd = &cobra.Command{
	Use:   "pr <number>",
	Short: "Review a GitHub pull request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid PR number %q", args[0])
		}
		return withSetup(func(ctx context.Context, cfg config.Config, root string) error {
			owner, repo, err := resolveRepo()
			if err != nil {
				return err
			}
			gh, err := github.NewClient(ctx, os.Getenv("GITHUB_TOKEN"))
			if err != nil {
				return err
			}
			entries, err := gh.ListFiles(ctx, owner, repo, number)
			if err != nil {
				return err
			}
			entries = gitctx.Filter(entries, cfg.ExcludePatterns)

			result, err := executeReview(ctx, cfg, root, entries)
			if err != nil {
				return err
			}
			if flagPost {
				writer := &output.MarkdownWriter{PRComment: true}
				var sb strings.Builder
				if err := writer.Write(&sb, result); err != nil {
					return err
				}
				if err := gh.UpsertComment(ctx, owner, repo, number, sb.String()); err != nil {
					return err
				}
			}
			return emit(result, cfg)
		})
	},
}

func init() {
	addReviewFlags(reviewCmd)
	reviewRangeCmd.Flags().BoolVar(&flagMergeBase, "merge-base", false, "Diff from the merge base for two-dot ranges")
	reviewFileCmd.Flags().BoolVar(&flagUnified, "unified", false, "Input is a unified diff rather than JSON entries")
	reviewPRCmd.Flags().StringVar(&flagRepo, "repo", "", "Repository as owner/name (default: detected from the git remote)")
	reviewPRCmd.Flags().BoolVar(&flagPost, "post", false, "Post the report as a PR comment")

	reviewCmd.AddCommand(reviewStagedCmd)
	reviewCmd.AddCommand(reviewUnstagedCmd)
	reviewCmd.AddCommand(reviewCommitCmd)
	reviewCmd.AddCommand(reviewRangeCmd)
	reviewCmd.AddCommand(reviewFileCmd)
	reviewCmd.AddCommand(reviewPRCmd)
}

// withSetup loads and validates config, then runs fn with the logger
// context and repo root. Runtime failures inside fn set the exit code
// instead of surfacing as usage errors.
func withSetup(fn func(ctx context.Context, cfg config.Config, root string) error) error {
	ctx := loggerContext()
	root := repoRoot()

	cfg, err := config.Load(ctx, config.Locate(flagConfigPath, root))
	if err != nil {
		return err
	}
	applyFlags(&cfg)

	if err := fn(ctx, cfg, root); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
	}
	return nil
}

func applyFlags(cfg *config.Config) {
	if flagFormat != "" {
		cfg.Output.Format = flagFormat
	}
	if flagMaxFull > 0 {
		cfg.Review.MaxFullFiles = flagMaxFull
	}
	if flagRefresh {
		cfg.Cache.ForceRefresh = true
	}
	if flagExclude != "" {
		cfg.ExcludePatterns = append(cfg.ExcludePatterns, splitComma(flagExclude)...)
	}
	if flagNoRedact {
		f := false
		cfg.Review.RedactSecrets = &f
		fmt.Fprintln(os.Stderr, "WARNING: secret redaction is disabled")
	}
}

func runReview(ctx context.Context, cfg config.Config, root string, entries []diff.Entry) error {
	result, err := executeReview(ctx, cfg, root, entries)
	if err != nil {
		return err
	}
	return emit(result, cfg)
}

// executeReview wires the project-context manager, the gateway, and
// the engine, and runs the review.
func executeReview(ctx context.Context, cfg config.Config, root string, entries []diff.Entry) (model.ReviewResult, error) {
	if err := cfg.Validate(); err != nil {
		return model.ReviewResult{}, err
	}
	pc, err := cfg.ProviderConfig()
	if err != nil {
		return model.ReviewResult{}, err
	}
	transport, err := llm.NewDefaultTransport(pc)
	if err != nil {
		return model.ReviewResult{}, err
	}
	var gwOpts []llm.Option
	if cfg.Cache.Completions {
		completions, err := cache.New(true, "", int(cfg.Cache.TTL.Seconds()))
		if err != nil {
			return model.ReviewResult{}, err
		}
		gwOpts = append(gwOpts, llm.WithCompletionCache(completions))
	}
	gateway, err := llm.NewGateway(transport, pc, gwOpts...)
	if err != nil {
		return model.ReviewResult{}, err
	}

	project, cacheInfo := loadProjectContext(ctx, cfg, root)

	engine := review.NewEngine(gateway, review.Options{
		MaxFull:       cfg.Review.MaxFullFiles,
		Concurrency:   cfg.Review.Concurrency,
		ReviewTimeout: cfg.Review.Timeout,
		RedactSecrets: cfg.RedactSecrets(),
	})
	result, err := engine.Run(ctx, entries, project)
	if err != nil {
		return model.ReviewResult{}, err
	}
	result.CacheInfo = &cacheInfo
	return result, nil
}

// loadProjectContext fetches the project context for the repo root.
// Context is an aid, not a prerequisite: any failure is logged and the
// review proceeds without it.
func loadProjectContext(ctx context.Context, cfg config.Config, root string) (projctx.Context, model.CacheInfo) {
	log := clog.FromContext(ctx)
	store, err := projctx.NewFileStore(cacheDir(cfg, root))
	if err != nil {
		log.With("error", err.Error()).Warn("Context store unavailable, reviewing without project context")
		return projctx.Context{}, model.CacheInfo{}
	}
	project, cacheInfo, err := projctx.NewManager(store).Get(ctx, root, projctx.Options{
		TTL:           cfg.Cache.TTL,
		ForceRefresh:  cfg.Cache.ForceRefresh,
		CriticalPaths: cfg.CriticalPaths,
	})
	if err != nil {
		log.With("error", err.Error()).Warn("Context synthesis failed, reviewing without project context")
		return projctx.Context{}, model.CacheInfo{}
	}
	return project, cacheInfo
}

func emit(result model.ReviewResult, cfg config.Config) error {
	if err := output.WriteResult(result, cfg.Output.Format, flagOut); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, output.Banner(result))
	if result.Conclusion == model.NeedsReview {
		exitCode = ExitNeedsReview
	}
	return nil
}

// readEntries loads a change set from path ("-" reads stdin), either
// as JSON entries or as a unified diff.
func readEntries(path string, unified bool) ([]diff.Entry, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	if unified {
		return diff.ParseUnified(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return diff.ParseJSON(data)
}

func resolveRepo() (owner, repo string, err error) {
	if flagRepo != "" {
		parts := strings.SplitN(flagRepo, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("--repo must be owner/name, got %q", flagRepo)
		}
		return parts[0], parts[1], nil
	}
	return github.DetectRepo()
}

// repoRoot prefers the git toplevel so cache and config resolution
// work from subdirectories.
func repoRoot() string {
	if meta, err := gitctx.GetRepoMeta(); err == nil && meta.Root != "" {
		return meta.Root
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func cacheDir(cfg config.Config, root string) string {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	return filepath.Join(root, projctx.DefaultCacheDir)
}

func splitComma(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

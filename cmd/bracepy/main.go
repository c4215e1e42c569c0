package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexcodex/bracepy/annotate"
	"github.com/lexcodex/bracepy/app/viewer"
	"github.com/lexcodex/bracepy/cmd/internal/workspacecfg"
	"github.com/lexcodex/bracepy/index"
	"github.com/lexcodex/bracepy/overlay"
	"github.com/lexcodex/bracepy/pytree"
	"github.com/lexcodex/bracepy/server"
)

var (
	flagWorkspace string
	flagConfig    string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bracepy",
		Short: "Block-boundary markers for Python source",
	}
	root.PersistentFlags().StringVar(&flagWorkspace, "workspace", envOrDefault("BRACEPY_WORKSPACE", "."), "Workspace root")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default <workspace>/.bracepy/config.yaml)")

	root.AddCommand(newAnnotateCmd(), newViewCmd(), newLSPCmd(), newIndexCmd(), newSearchCmd(), newStatsCmd(), newConfigCmd())
	return root
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return workspacecfg.DefaultPath(flagWorkspace)
}

func loadOptions() (annotate.Options, error) {
	cfg, err := workspacecfg.Load(configPath())
	if err != nil {
		return annotate.Options{}, err
	}
	return cfg.ToOptions()
}

func indexPath(cfg workspacecfg.Config) string {
	if cfg.IndexPath != "" {
		if filepath.IsAbs(cfg.IndexPath) {
			return cfg.IndexPath
		}
		return filepath.Join(flagWorkspace, cfg.IndexPath)
	}
	return filepath.Join(flagWorkspace, ".bracepy", "index.db")
}

func newAnnotateCmd() *cobra.Command {
	var plain bool
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "annotate <file>...",
		Short: "Print source files with block markers appended",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("at least one file required")
			}
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			parser := pytree.NewPythonParser()
			styles := overlay.DefaultStyles()
			logger := log.New(cmd.ErrOrStderr(), "bracepy ", log.LstdFlags)
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				tree, err := parser.Parse(string(data), path)
				if err != nil {
					return err
				}
				markers := annotate.Annotate(tree, opts)
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if err := enc.Encode(markers); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), overlay.RenderSource(string(data), markers, styles, plain, logger))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable terminal styling")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit markers as JSON instead of annotated source")
	return cmd
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Browse an annotated file in a scrollable terminal view",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("exactly one file required")
			}
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			tree, err := pytree.NewPythonParser().Parse(string(data), args[0])
			if err != nil {
				return err
			}
			doc := viewer.Document{
				Path:    args[0],
				Source:  string(data),
				Markers: annotate.Annotate(tree, opts),
			}
			return viewer.Run(cmd.Context(), doc)
		},
	}
	return cmd
}

func newLSPCmd() *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Serve markers to editors over LSP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			logger := log.New(cmd.ErrOrStderr(), "lsp ", log.LstdFlags)
			if logPath != "" {
				f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				logger = log.New(f, "lsp ", log.LstdFlags)
			}
			srv := server.NewLSPServer(opts, logger)
			return srv.RunStdio(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&logPath, "log", "", "Append server logs to a file (stderr pollutes the stdio transport in some editors)")
	return cmd
}

func newIndexManager(cmd *cobra.Command, workers int) (*index.Manager, *index.SQLiteStore, error) {
	cfg, err := workspacecfg.Load(configPath())
	if err != nil {
		return nil, nil, err
	}
	opts, err := cfg.ToOptions()
	if err != nil {
		return nil, nil, err
	}
	dbPath := indexPath(cfg)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, nil, err
	}
	store, err := index.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, nil, err
	}
	manager := index.NewManager(store, opts, index.Config{
		WorkspacePath:   flagWorkspace,
		ParallelWorkers: workers,
		Logger:          log.New(cmd.ErrOrStderr(), "index ", log.LstdFlags),
	})
	return manager, store, nil
}

func newIndexCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "index [file]",
		Short: "Index the workspace's block structures into SQLite",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, store, err := newIndexManager(cmd, workers)
			if err != nil {
				return err
			}
			defer store.Close()
			start := time.Now()
			if len(args) > 0 {
				if err := manager.IndexFile(args[0]); err != nil {
					return err
				}
			} else if err := manager.IndexWorkspace(); err != nil {
				return err
			}
			stats, err := manager.Stats()
			if err != nil {
				return err
			}
			cmd.Printf("Indexed %d files, %d structures in %s\n", stats.TotalFiles, stats.TotalStructures, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 4, "Parallel indexing workers")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var kinds []string
	var name string
	var limit int
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query indexed block structures",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, store, err := newIndexManager(cmd, 0)
			if err != nil {
				return err
			}
			defer store.Close()
			results, err := manager.Search(index.StructureQuery{
				Kinds:       kinds,
				NamePattern: name,
				Limit:       limit,
			})
			if err != nil {
				return err
			}
			for _, rec := range results {
				label := rec.Kind
				if rec.Subkind != "" {
					label += "/" + rec.Subkind
				}
				cmd.Printf("%s\t%s\t%s\tlines %d-%d\n", rec.FileID, label, rec.Name, rec.StartLine, rec.EndLine)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Filter by kind (function, class, loop, conditional, exception)")
	cmd.Flags().StringVar(&name, "name", "", "Filter by name pattern (SQL LIKE)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum results")
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, store, err := newIndexManager(cmd, 0)
			if err != nil {
				return err
			}
			defer store.Close()
			stats, err := manager.Stats()
			if err != nil {
				return err
			}
			cmd.Printf("Files: %d\n", stats.TotalFiles)
			cmd.Printf("Structures: %d\n", stats.TotalStructures)
			for kind, count := range stats.StructuresByKind {
				cmd.Printf("  %s: %d\n", kind, count)
			}
			cmd.Printf("Database size: %d bytes\n", stats.DatabaseSize)
			return nil
		},
	}
	return cmd
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{Use: "config", Short: "Manage workspace annotation settings"}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file for the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config already exists at %s", path)
			}
			enabled := true
			cfg := workspacecfg.Config{
				ShowFunctionBraces:    &enabled,
				ShowClassBraces:       &enabled,
				ShowLoopBraces:        &enabled,
				ShowConditionalBraces: &enabled,
				ShowExceptionBraces:   &enabled,
				LastUpdated:           time.Now().Unix(),
			}
			if err := workspacecfg.Save(path, cfg); err != nil {
				return err
			}
			cmd.Printf("Config written to %s\n", path)
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective annotation options",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			for _, kind := range annotate.AllKinds() {
				cmd.Printf("%s: enabled=%v\n", kind, opts.KindEnabled(kind))
			}
			cmd.Printf("style: %s\n", opts.StyleTag)
			return nil
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}

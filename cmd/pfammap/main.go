package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fak/pfam-map-loader/internal/api"
	"github.com/fak/pfam-map-loader/internal/arch"
	"github.com/fak/pfam-map-loader/internal/config"
	"github.com/fak/pfam-map-loader/internal/pipeline"
	"github.com/fak/pfam-map-loader/internal/platform/logger"
	"github.com/fak/pfam-map-loader/internal/store"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "pfammap",
		Short:        "Pfam domain architectures and activity-to-domain mapping",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "local.yaml", "config file")

	rootCmd.AddCommand(archsCmd())
	rootCmd.AddCommand(loadCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env bundles what every command needs
type env struct {
	cfg   *config.Config
	log   *logger.Logger
	store *store.Store
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if cfg.Driver == "sqlite3" {
		dir := filepath.Dir(cfg.DataSource())
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	s, err := store.New(ctx, cfg.Driver, cfg.DataSource())
	if err != nil {
		log.Sync()
		return nil, err
	}
	return &env{cfg: cfg, log: log, store: s}, nil
}

func (e *env) close() {
	e.store.Close()
	e.log.Sync()
}

func archsCmd() *cobra.Command {
	var multiOnly bool

	cmd := &cobra.Command{
		Use:   "archs",
		Short: "Build domain architecture reports and log coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			r := pipeline.New(e.cfg, e.log)
			sum, err := r.Architectures(ctx, e.store, arch.Options{MultiDomainOnly: multiOnly})
			if err != nil {
				return err
			}

			fmt.Printf("Run:            %s\n", r.RunID)
			fmt.Printf("Targets:        %d (%d tallied, %d without domains)\n", sum.Targets, sum.Tallied, sum.MissingDomains)
			fmt.Printf("Architectures:  %d (%d multi-domain)\n", sum.Architectures, sum.MultiDomain)
			fmt.Printf("Network:        %d domains, %d edges\n", sum.Domains, sum.Edges)
			fmt.Printf("Coverage:       %d/%d targets, %d/%d activities\n",
				sum.ByTargets.ValidCount, sum.ByTargets.TotalCount,
				sum.ByActivities.ValidCount, sum.ByActivities.TotalCount)
			for _, f := range sum.Files {
				fmt.Printf("  wrote %s\n", f)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&multiOnly, "multi-domain-only", false, "leave single-domain targets out of the tallies")
	return cmd
}

func loadCmd() *cobra.Command {
	var noUpload bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Flag activities, merge with manual maps and load pfam_maps",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			var up pipeline.Uploader
			if !noUpload {
				up = e.store
			}

			r := pipeline.New(e.cfg, e.log)
			sum, err := r.Load(ctx, e.store, up)
			if err != nil {
				return err
			}

			fmt.Printf("Run:         %s\n", r.RunID)
			fmt.Printf("Activities:  %d (%d single, %d redundant, %d conflict)\n",
				sum.Activities, sum.Flags.Single, sum.Flags.Redundant, sum.Flags.Conflict)
			fmt.Printf("Rows:        %d manual + %d automatic = %d\n", sum.ManualRows, sum.AutoRows, sum.MergedRows)
			fmt.Printf("Wrote:       %s\n", e.cfg.MapsPath())
			if noUpload {
				fmt.Println("(skipped upload)")
				return nil
			}
			for _, name := range store.Tables() {
				if n, ok := sum.Uploaded[name]; ok {
					fmt.Printf("  loaded %s: %d rows\n", name, n)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noUpload, "no-upload", false, "write mapping files without loading the database")
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the loaded manual maps back to the manual file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			n, err := pipeline.New(e.cfg, e.log).Export(ctx, e.store)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d manual rows to %s\n", n, e.cfg.ManualMapsPath())
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only mapping API",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			// Note: don't defer e.close() as server runs indefinitely

			server := api.New(e.store, e.log, addr)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address")
	return cmd
}

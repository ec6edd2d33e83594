package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"JobScanner/internal/app"
	"JobScanner/internal/config"
	"JobScanner/internal/domain"
	"JobScanner/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled cycles, retention sweeps and the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, err := build(ctx)
		if err != nil {
			return err
		}
		defer application.Close(context.WithoutCancel(ctx))

		return application.Serve(ctx)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scrape cycle and print its report as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		application, err := build(ctx)
		if err != nil {
			return err
		}
		defer application.Close(context.WithoutCancel(ctx))

		report, err := application.RunOnce(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		if report.Status == domain.CycleFailed {
			return fmt.Errorf("cycle %s failed", report.ID)
		}
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete postings not seen within the retention window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, err := build(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close(cmd.Context())

		deleted, err := application.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d postings\n", deleted)
		return nil
	},
}

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List configured career sites",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCOMPANY\tSCANNER\tENABLED\tURL")
		for _, site := range cfg.Sites {
			company := domain.CompanyDisplayName(site.Company)
			if company == "" {
				company = domain.CompanyDisplayName(site.Name)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", site.Name, company, site.Scanner, site.IsEnabled(), strings.TrimSuffix(site.URL, "/"))
		}
		return w.Flush()
	},
}

func build(ctx context.Context) (*app.Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	return app.New(ctx, cfg, logger)
}

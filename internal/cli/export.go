package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jo-hoe/trademate/internal/core"
	"github.com/jo-hoe/trademate/internal/export"
	"github.com/jo-hoe/trademate/internal/frontend"
	"github.com/jo-hoe/trademate/internal/report"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	granularity string
	preview     bool
	outDir      string
	configPath  string
	scale       float64
}

func (c *CLI) exportCommand() *cobra.Command {
	opts := exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a progress report and write it as PDF",
		Long: `Render the progress report of one granularity and write it as progress-report-<granularity>.pdf.

Without --config the report is built from generated sample data held in memory.`,
		Example: `  trademate export --granularity weekly --out ./reports
  trademate export -g daily --preview`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.granularity, "granularity", "g", report.Weekly.String(), "report type: daily, weekly or monthly")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "write a temporary preview and print its URL")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "directory the report is written to")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "raster scale factor (overrides the configuration)")
	return cmd
}

func (c *CLI) loadConfig(opts exportOptions) (*core.ServiceConfig, error) {
	config := core.DefaultConfig()
	config.Database.ConnectionString = ":memory:"
	if opts.configPath != "" {
		loaded, err := core.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	if opts.scale != 0 {
		config.Export.Scale = opts.scale
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}
	return config, nil
}

func (c *CLI) runExport(cmd *cobra.Command, opts exportOptions) error {
	g, err := report.ParseGranularity(opts.granularity)
	if err != nil {
		return err
	}
	config, err := c.loadConfig(opts)
	if err != nil {
		return err
	}

	coreService := core.NewCoreService(config, core.WithAssets(frontend.Assets()))
	defer func() {
		if err := coreService.Close(); err != nil {
			c.Logger.Warn("failed to close core service", "error", err)
		}
	}()

	notifier := export.NotifierFunc(func(message string) {
		c.Logger.Error(message)
	})
	req := export.ExportRequest{Granularity: g.String(), OpenInPreview: opts.preview}
	result, err := coreService.Export(cmd.Context(), appName, req, &export.FileOutput{Dir: opts.outDir}, notifier)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	c.Logger.Info("report exported", "pages", result.PageCount, "bytes", result.SizeBytes)
	if opts.preview {
		_, err = fmt.Fprintln(c.out, result.PreviewURL)
	} else {
		_, err = fmt.Fprintln(c.out, filepath.Join(opts.outDir, result.Filename))
	}
	return err
}

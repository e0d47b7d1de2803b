package main

import (
	"io"
	"strings"

	"arffmeta/adapters/export"
	"arffmeta/internal"
	"arffmeta/internal/config"
	"arffmeta/internal/errors"
	"arffmeta/internal/loader"
	"arffmeta/internal/metadata"

	"github.com/spf13/cobra"
)

// app bundles what every subcommand needs once configuration is loaded
type app struct {
	cfg    *config.Config
	logger *internal.Logger
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}, nil
}

func (r *app) loader(rawBytes bool) *loader.Loader {
	return loader.NewLoader(loader.Config{
		DecodeText: r.cfg.Loader.DecodeText && !rawBytes,
	}, r.logger)
}

func (r *app) extractor() *metadata.Extractor {
	return metadata.NewExtractor(metadata.Config{
		Workers:           r.cfg.Extractor.Workers,
		UnsupportedPolicy: metadata.UnsupportedPolicy(r.cfg.Extractor.UnsupportedPolicy),
	}, r.logger)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "arffmeta",
		Short:         "Load ARFF files and summarize their attributes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMetaCmd(),
		newConvertCmd(),
	)

	return rootCmd
}

func newMetaCmd() *cobra.Command {
	var format string
	var out string
	var rawBytes bool

	cmd := &cobra.Command{
		Use:   "meta [file.arff]",
		Short: "Print the attribute metadata table of an ARFF file",
		Long: `Load an ARFF file and print one row per attribute with its dtype,
ARFF type, values (nominal list or distinct count), min, max, mean and std.

Defaults are read from the environment:
- EXPORT_FORMAT=table|csv|json|xlsx (default: table)
- ARFF_DECODE_TEXT (default: true)
- METADATA_WORKERS (default: 1)
- METADATA_UNSUPPORTED=error|skip (default: error)

Example: arffmeta meta weather.arff --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newApp()
			if err != nil {
				return err
			}
			defer rt.logger.Sync()

			if format == "" {
				format = rt.cfg.Export.Format
			}
			return runMeta(cmd.OutOrStdout(), rt, args[0], export.Format(strings.ToLower(format)), out, rawBytes)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format: table, csv, json or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&rawBytes, "raw-bytes", false, "Keep nominal values as raw bytes")

	return cmd
}

func runMeta(stdout io.Writer, rt *app, path string, format export.Format, out string, rawBytes bool) error {
	if !format.Valid() {
		return errors.InvalidInput("unknown metadata format " + string(format))
	}
	if format == export.FormatXLSX && out == "" {
		return errors.InvalidInput("xlsx output needs --out")
	}

	table, err := rt.loader(rawBytes).Load(path)
	if err != nil {
		return err
	}
	defer table.Release()

	meta, err := rt.extractor().ToTable(table)
	if err != nil {
		return err
	}

	write := func(w io.Writer) error { return export.WriteMetadata(w, format, meta) }
	if out == "" {
		if err := write(stdout); err != nil {
			return errors.ExportError("metadata", err)
		}
		return nil
	}
	if err := export.ToFile(out, write); err != nil {
		return err
	}
	rt.logger.Info("[Meta] wrote %d attributes to %s", meta.Len(), out)
	return nil
}

func newConvertCmd() *cobra.Command {
	var out string
	var rawBytes bool

	cmd := &cobra.Command{
		Use:   "convert [file.arff]",
		Short: "Convert an ARFF file to Parquet or CSV",
		Long: `Load an ARFF file and write its data table. The output format follows
the --out extension (.parquet or .csv).

Example: arffmeta convert weather.arff --out weather.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newApp()
			if err != nil {
				return err
			}
			defer rt.logger.Sync()

			return runConvert(rt, args[0], out, rawBytes)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output file (.parquet or .csv)")
	cmd.Flags().BoolVar(&rawBytes, "raw-bytes", false, "Keep nominal values as raw bytes")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runConvert(rt *app, path, out string, rawBytes bool) error {
	writeTable, err := export.TableWriterFor(out)
	if err != nil {
		return err
	}

	table, err := rt.loader(rawBytes).Load(path)
	if err != nil {
		return err
	}
	defer table.Release()

	if err := export.ToFile(out, func(w io.Writer) error { return writeTable(w, table) }); err != nil {
		return err
	}
	rt.logger.Info("[Convert] wrote %d rows x %d columns to %s", table.NumRows(), table.NumCols(), out)
	return nil
}

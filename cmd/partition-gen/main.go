// Command partition-gen generates the SQL migration that extends the yearly
// partitions of the audit and automation log tables.
//
// Usage:
//
//	go run github.com/AIDEN1973/partition-gen/cmd/partition-gen
//
// With no arguments it writes the compiled-in 2033-2075 extension to
// infra/supabase/supabase/migrations/20260112000014_extend_partitions_to_2075.sql.
//
// Extend a different range:
//
//	go run github.com/AIDEN1973/partition-gen/cmd/partition-gen --start-year 2076 --end-year 2080 --filename extend_to_2080.sql
//
// Override the table configuration from a YAML file:
//
//	go run github.com/AIDEN1973/partition-gen/cmd/partition-gen --config partitions.yaml
//
// Export run metrics for the node_exporter textfile collector or a Pushgateway:
//
//	go run github.com/AIDEN1973/partition-gen/cmd/partition-gen --metrics-file /var/lib/node_exporter/partitiongen.prom
//	go run github.com/AIDEN1973/partition-gen/cmd/partition-gen --pushgateway http://pushgateway:9091
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AIDEN1973/partition-gen/metrics"
	"github.com/AIDEN1973/partition-gen/pkg/migrations"
	"github.com/AIDEN1973/partition-gen/pkg/version"
)

const pushTimeout = 10 * time.Second

type options struct {
	configFile     string
	outputFolder   string
	outputFilename string
	schemaName     string
	startYear      int
	endYear        int
	baseYear       int
	logLevel       string
	metricsFile    string
	pushgateway    string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating migration: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := migrations.DefaultConfig()
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "partition-gen",
		Short:         "Generate the yearly partition migration for audit and automation log tables",
		Args:          cobra.NoArgs,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "YAML file overriding the compiled-in configuration")
	flags.StringVar(&opts.outputFolder, "output", defaults.OutputFolder, "Output folder for the migration file (must exist)")
	flags.StringVar(&opts.outputFilename, "filename", defaults.OutputFilename, "Output filename")
	flags.StringVar(&opts.schemaName, "schema", defaults.SchemaName, "Schema holding the partitioned tables")
	flags.IntVar(&opts.startYear, "start-year", defaults.Range.StartYear, "First year to create partitions for")
	flags.IntVar(&opts.endYear, "end-year", defaults.Range.EndYear, "Last year to create partitions for (inclusive)")
	flags.IntVar(&opts.baseYear, "base-year", defaults.BaseYear, "First year covered by existing partitions")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics to this file for the node_exporter textfile collector")
	flags.StringVar(&opts.pushgateway, "pushgateway", "", "Push run metrics to this Pushgateway URL")

	return cmd
}

// resolveConfig layers the config file over the compiled defaults and explicit flags over both.
func resolveConfig(cmd *cobra.Command, opts *options) (migrations.Config, error) {
	config := migrations.DefaultConfig()

	if opts.configFile != "" {
		var err error
		config, err = migrations.LoadConfig(opts.configFile, config)
		if err != nil {
			return migrations.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		config.OutputFolder = opts.outputFolder
	}
	if flags.Changed("filename") {
		config.OutputFilename = opts.outputFilename
	}
	if flags.Changed("schema") {
		config.SchemaName = opts.schemaName
	}
	if flags.Changed("start-year") {
		config.Range.StartYear = opts.startYear
	}
	if flags.Changed("end-year") {
		config.Range.EndYear = opts.endYear
	}
	if flags.Changed("base-year") {
		config.BaseYear = opts.baseYear
	}

	return config, nil
}

func newLogger(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger, nil
}

func run(cmd *cobra.Command, opts *options) error {
	logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
	if err != nil {
		return err
	}

	config, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	config.Logger = logger

	result, err := migrations.GeneratePostgres(&config)
	if err != nil {
		return err
	}

	recordMetrics(result)
	exportMetrics(cmd.Context(), logger, opts)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generated postgres migration: %s\n", result.Path)
	fmt.Fprintf(out, "  Lines:  %d\n", result.Lines)
	fmt.Fprintf(out, "  Years:  %s (%d years)\n", result.Range, result.Range.Years())
	fmt.Fprintf(out, "  Tables: %d (%d partitions, %d indexes)\n", len(result.Tables), result.Partitions(), result.Indexes())

	return nil
}

func recordMetrics(result migrations.Result) {
	collector := metrics.NewCollector()
	for _, table := range result.Tables {
		collector.AddPartitions(table.Name, table.Partitions)
		collector.AddIndexes(table.Name, table.Indexes)
	}
	collector.SetOutputLines(result.Lines)
	collector.SetYears(result.Range.Years())
	collector.MarkSuccess()
}

// exportMetrics never fails the run: the migration file is already written.
func exportMetrics(ctx context.Context, logger logrus.FieldLogger, opts *options) {
	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			logger.WithError(err).WithField("path", opts.metricsFile).Warn("failed to write metrics file")
		}
	}

	if opts.pushgateway != "" {
		ctx, cancel := context.WithTimeout(ctx, pushTimeout)
		defer cancel()

		if err := metrics.NewPusher(opts.pushgateway, "partitiongen").Push(ctx); err != nil {
			logger.WithError(err).WithField("url", opts.pushgateway).Warn("failed to push metrics")
		}
	}
}

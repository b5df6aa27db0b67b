// Command bioremcore enriches identifier submissions against the bundled
// bioremediation knowledge bases and writes one delimited result table per
// source, printing the run report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"bioremcore/internal/artifact"
	"bioremcore/internal/config"
	"bioremcore/internal/observe"
	"bioremcore/internal/pipeline"
	"bioremcore/internal/refstore"
	"bioremcore/internal/registry"
	"bioremcore/pkg/processor"
	"bioremcore/plugins/kocount"
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath   string
	inputPath    string
	source       string
	outputDir    string
	logLevel     string
	timestamp    bool
	timestampSet bool
	normalize    bool
	normalizeSet bool
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bioremcore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "path to YAML configuration")
	fs.StringVar(&opts.inputPath, "input", "", "submission file with sample headers and K numbers")
	fs.StringVar(&opts.source, "source", "", "run a single source (core, pathway, hydrocarbon, toxicity)")
	fs.StringVar(&opts.outputDir, "output", "", "output directory (overrides configuration)")
	fs.StringVar(&opts.logLevel, "log-level", "", "log verbosity (overrides configuration)")
	fs.BoolVar(&opts.timestamp, "timestamp", false, "append a timestamp to output filenames")
	fs.BoolVar(&opts.normalize, "normalize", false, "normalize column types before persisting")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timestamp":
			opts.timestampSet = true
		case "normalize":
			opts.normalizeSet = true
		}
	})
	if opts.inputPath == "" {
		fmt.Fprintln(stderr, "bioremcore: -input is required")
		fs.Usage()
		return 2
	}
	if err := run(context.Background(), opts, stdout); err != nil {
		fmt.Fprintf(stderr, "bioremcore: %v\n", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.outputDir != "" {
		cfg.Output.Dir = opts.outputDir
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.timestampSet {
		cfg.Output.Timestamp = opts.timestamp
	}
	if opts.normalizeSet {
		cfg.Pipeline.NormalizeTypes = opts.normalize
	}

	logger, err := observe.NewProductionLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	procs := processor.NewRegistry()
	for _, name := range cfg.Pipeline.Processors {
		switch name {
		case "kocount":
			if err := kocount.Register(procs); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown processor %q (known: kocount)", name)
		}
	}

	reg, err := openRegistry(ctx, cfg.Registry)
	if err != nil {
		return err
	}
	defer func() { _ = reg.Close() }()

	pipe := pipeline.New(
		refstore.Catalog{DataDir: cfg.Data.Dir, Separator: cfg.DataSeparator()},
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(observe.NewExpvarMetricsRecorder("")),
		pipeline.WithProcessors(procs),
		pipeline.WithRecorder(reg),
		pipeline.WithStoreOpener(storeOpener(cfg.Output.Driver)),
	)

	references := make(map[pipeline.Source]string, len(cfg.Data.References))
	for name, path := range cfg.Data.References {
		references[pipeline.Source(name)] = path
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	if opts.source != "" {
		if !pipeline.KnownSource(opts.source) {
			return fmt.Errorf("unknown source %q", opts.source)
		}
		src := pipeline.Source(opts.source)
		outcome, runErr := pipe.Run(ctx, pipeline.RunSpec{
			Source:            src,
			InputPath:         opts.inputPath,
			ReferencePath:     references[src],
			CoreReferencePath: references[pipeline.SourceCore],
			OutputDir:         cfg.Output.Dir,
			Separator:         cfg.OutputSeparator(),
			Timestamp:         cfg.Output.Timestamp,
			NormalizeTypes:    cfg.Pipeline.NormalizeTypes,
		})
		if err := enc.Encode(outcome); err != nil {
			return err
		}
		return runErr
	}

	report, runErr := pipe.RunAll(ctx, pipeline.Options{
		InputPath:      opts.inputPath,
		OutputDir:      cfg.Output.Dir,
		Separator:      cfg.OutputSeparator(),
		Timestamp:      cfg.Output.Timestamp,
		NormalizeTypes: cfg.Pipeline.NormalizeTypes,
		ReferencePaths: references,
	})
	if err := enc.Encode(report); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d sources failed", report.Failed, len(report.Outcomes))
	}
	return nil
}

func openRegistry(ctx context.Context, cfg config.RegistryConfig) (registry.Registry, error) {
	switch cfg.Driver {
	case "", registry.DriverMemory:
		return registry.NewMemory(), nil
	case registry.DriverSQLite:
		return registry.NewSQLite(cfg.SQLitePath)
	case registry.DriverPostgres:
		return registry.NewPostgres(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown registry driver %q", cfg.Driver)
	}
}

func storeOpener(driver string) pipeline.StoreOpener {
	return func(ctx context.Context, dir string) (artifact.Store, error) {
		switch artifact.Driver(driver) {
		case "", artifact.DriverFilesystem:
			return artifact.NewFilesystem(dir)
		case artifact.DriverMemory:
			return artifact.NewMemory(), nil
		case artifact.DriverS3:
			return artifact.OpenS3FromEnv(ctx, dir)
		default:
			return nil, fmt.Errorf("unknown output driver %q", driver)
		}
	}
}

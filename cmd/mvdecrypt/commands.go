package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dd0wney/mvdecrypt/pkg/asset"
	"github.com/dd0wney/mvdecrypt/pkg/batch"
	"github.com/dd0wney/mvdecrypt/pkg/config"
	"github.com/dd0wney/mvdecrypt/pkg/logging"
	"github.com/dd0wney/mvdecrypt/pkg/metrics"
	"github.com/dd0wney/mvdecrypt/pkg/obfuscation"
	"github.com/dd0wney/mvdecrypt/pkg/project"
	"github.com/dd0wney/mvdecrypt/pkg/sink"
)

// batchFlags holds the command line for decrypt, restore and encrypt
type batchFlags struct {
	configFile  string
	key         string
	rawKey      string
	out         string
	workers     int
	flavor      string
	noVerify    bool
	overwrite   bool
	metricsFile string
	tui         bool
	dir         string
	set         map[string]bool
}

func parseBatchFlags(command string, args []string, stderr io.Writer) (*batchFlags, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &batchFlags{set: map[string]bool{}}

	fs.StringVar(&f.configFile, "config", "", "YAML configuration file")
	fs.StringVar(&f.key, "key", "", "Project key, hex encoded")
	fs.StringVar(&f.rawKey, "raw-key", "", "Project key, used verbatim")
	fs.StringVar(&f.out, "out", "", "Output directory")
	fs.IntVar(&f.workers, "workers", 0, "Parallel workers")
	fs.StringVar(&f.flavor, "flavor", "", "Extension family for encrypt (mv|mz)")
	fs.BoolVar(&f.noVerify, "no-verify", false, "Do not check the fake file signature")
	fs.BoolVar(&f.overwrite, "overwrite", false, "Replace existing output files")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to FILE")
	fs.BoolVar(&f.tui, "tui", false, "Show an interactive progress bar")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	if fs.NArg() != 1 {
		return nil, fmt.Errorf("%s: expected exactly one directory, got %d", command, fs.NArg())
	}
	if f.key != "" && f.rawKey != "" {
		return nil, fmt.Errorf("%s: --key and --raw-key are mutually exclusive", command)
	}
	f.dir = fs.Arg(0)
	return f, nil
}

// apply overlays explicitly set flags on cfg
func (f *batchFlags) apply(cfg *config.Config) {
	if f.set["out"] {
		cfg.Output.Dir = f.out
		cfg.Output.S3.Bucket = ""
	}
	if f.set["workers"] {
		cfg.Run.Workers = f.workers
	}
	if f.set["flavor"] {
		cfg.Run.Flavor = f.flavor
	}
	if f.set["no-verify"] {
		cfg.Scheme.VerifySignature = !f.noVerify
	}
	if f.set["overwrite"] {
		cfg.Run.Overwrite = f.overwrite
	}
	if f.set["metrics-file"] {
		cfg.MetricsFile = f.metricsFile
	}
}

// explicitKey returns the key given on the command line, if any
func (f *batchFlags) explicitKey() ([]byte, error) {
	switch {
	case f.key != "":
		return obfuscation.ParseKey(f.key)
	case f.rawKey != "":
		return obfuscation.RawKey(f.rawKey)
	default:
		return nil, nil
	}
}

func runBatch(ctx context.Context, command string, args []string, stdout, stderr io.Writer) int {
	flags, err := parseBatchFlags(command, args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 2
	}

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	flags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	logger := logging.New(stderr, logging.ParseLevel(cfg.Log.Level), logging.ParseFormat(cfg.Log.Format)).
		With(logging.Component("mvdecrypt"))
	reg := metrics.NewRegistry()

	report, err := executeBatch(ctx, batch.Mode(command), flags, cfg, logger, reg, stderr)
	if cfg.MetricsFile != "" {
		if merr := reg.WriteTextfile(cfg.MetricsFile); merr != nil {
			logger.Error("metrics export failed", logging.Error(merr))
		}
	}
	if report != nil {
		fmt.Fprintln(stdout, renderSummary(report))
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if report.Failed > 0 {
		return 1
	}
	return 0
}

func executeBatch(ctx context.Context, mode batch.Mode, flags *batchFlags, cfg *config.Config,
	logger logging.Logger, reg *metrics.Registry, stderr io.Writer) (*batch.Report, error) {

	scheme, err := cfg.BuildScheme()
	if err != nil {
		return nil, err
	}
	engine, err := obfuscation.NewEngine(scheme)
	if err != nil {
		return nil, err
	}

	key, err := resolveBatchKey(mode, flags, engine, logger, reg)
	if err != nil {
		return nil, err
	}

	out, err := newSink(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := batch.Options{Mode: mode, Key: key, Flavor: cfg.Run.Flavor}
	procOpts := []batch.Option{
		batch.WithWorkers(cfg.Run.Workers),
		batch.WithLogger(logger),
		batch.WithMetrics(reg),
	}

	if !flags.tui {
		return batch.NewProcessor(engine, out, procOpts...).Run(ctx, flags.dir, opts)
	}

	// The progress bar owns the terminal; keep log output to errors
	logger.SetLevel(logging.ErrorLevel)

	var report *batch.Report
	var runErr error
	err = runWithTUI(ctx, stderr, "mvdecrypt "+string(mode), func(ctx context.Context, progress func(batch.Event)) {
		p := batch.NewProcessor(engine, out, append(procOpts, batch.WithProgress(progress))...)
		report, runErr = p.Run(ctx, flags.dir, opts)
	})
	if err != nil {
		return report, err
	}
	return report, runErr
}

// resolveBatchKey picks the key for a run. Decrypt may discover it from
// the project; restore and encrypt only use explicit or System.json keys.
func resolveBatchKey(mode batch.Mode, flags *batchFlags, engine *obfuscation.Engine,
	logger logging.Logger, reg *metrics.Registry) ([]byte, error) {

	explicit, err := flags.explicitKey()
	if err != nil {
		return nil, err
	}

	if mode == batch.ModeDecrypt {
		key, source, err := batch.ResolveKey(flags.dir, explicit, engine)
		if err != nil {
			return nil, fmt.Errorf("resolve key: %w", err)
		}
		reg.RecordKeyRecovery(source)
		logger.Info("key resolved", logging.KeySource(source))
		return key, nil
	}

	if len(explicit) > 0 {
		reg.RecordKeyRecovery(batch.KeySourceFlag)
		return explicit, nil
	}

	info, err := project.LoadSystemInfo(flags.dir)
	if err != nil {
		return nil, nil
	}
	hexKey, err := info.Key()
	if err != nil {
		return nil, nil
	}
	key, err := obfuscation.ParseKey(hexKey)
	if err != nil {
		return nil, fmt.Errorf("System.json: %w", err)
	}
	reg.RecordKeyRecovery(batch.KeySourceSystem)
	logger.Info("key resolved", logging.KeySource(batch.KeySourceSystem))
	return key, nil
}

func newSink(ctx context.Context, cfg *config.Config) (sink.Sink, error) {
	if cfg.UseS3() {
		return sink.NewS3SinkFromConfig(ctx, cfg.Output.S3)
	}
	return sink.NewDirSink(cfg.Output.Dir, cfg.Run.Overwrite), nil
}

func runRecoverKey(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("recover-key", flag.ContinueOnError)
	fs.SetOutput(stderr)
	noVerify := fs.Bool("no-verify", false, "Do not check the fake file signature")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: mvdecrypt recover-key [--no-verify] <file.rpgmvp|file.png_>")
		return 2
	}

	path := fs.Arg(0)
	if kind := asset.KindOf(asset.Ext(path)); kind != asset.KindImage {
		fmt.Fprintf(stderr, "Error: %s is not an encrypted image; only PNG headers are known\n", path)
		return 1
	}

	scheme, err := obfuscation.NewScheme(obfuscation.DefaultSignature(), obfuscation.DefaultHeaderLength, !*noVerify)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	engine, err := obfuscation.NewEngine(scheme)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	key, err := batch.RecoverKeyFromFile(path, engine)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, obfuscation.EncodeHex(key))
	return 0
}

func runExt(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: mvdecrypt ext <fake-extension>")
		return 2
	}
	realExt, err := asset.RealExtension(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, realExt)
	return 0
}

func runRoot(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: mvdecrypt root <path>")
		return 2
	}
	root, err := project.ResolveRoot(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, root)
	return 0
}

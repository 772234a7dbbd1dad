package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/mvdecrypt/pkg/asset"
	"github.com/dd0wney/mvdecrypt/pkg/logging"
	"github.com/dd0wney/mvdecrypt/pkg/metrics"
	"github.com/dd0wney/mvdecrypt/pkg/obfuscation"
	"github.com/dd0wney/mvdecrypt/pkg/parallel"
	"github.com/dd0wney/mvdecrypt/pkg/pools"
	"github.com/dd0wney/mvdecrypt/pkg/sink"
)

// Processor applies one mode to every matching asset below a directory
type Processor struct {
	engine   *obfuscation.Engine
	sink     sink.Sink
	workers  int
	logger   logging.Logger
	metrics  *metrics.Registry
	progress func(Event)
}

// Option configures a Processor
type Option func(*Processor)

func WithWorkers(n int) Option {
	return func(p *Processor) { p.workers = n }
}

func WithLogger(l logging.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

func WithMetrics(m *metrics.Registry) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithProgress registers a callback invoked after every asset. Calls are
// serialised.
func WithProgress(fn func(Event)) Option {
	return func(p *Processor) { p.progress = fn }
}

// NewProcessor creates a processor writing to out
func NewProcessor(engine *obfuscation.Engine, out sink.Sink, opts ...Option) *Processor {
	p := &Processor{
		engine:  engine,
		sink:    out,
		workers: 1,
		logger:  logging.NewNopLogger(),
		metrics: metrics.NewRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// result is one asset's outcome
type result struct {
	rel    string
	status string
	bytes  int
	err    error
}

// Run processes every asset under root. Per-asset failures are collected
// in the report; the returned error is only set when the run itself
// could not proceed or ctx was cancelled.
func (p *Processor) Run(ctx context.Context, root string, opts Options) (*Report, error) {
	if err := p.checkOptions(&opts); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := p.logger.With(logging.RunID(runID), logging.Mode(string(opts.Mode)))
	start := time.Now()

	assets, err := p.scan(root, opts.Mode)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:  runID,
		Mode:   opts.Mode,
		Source: root,
		Dest:   p.sink.Describe(),
		Total:  len(assets),
	}
	logger.Info("batch started", logging.Path(root), logging.Count(len(assets)), logging.String("dest", report.Dest))

	pool, err := parallel.NewWorkerPool(p.workers, parallel.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	record := func(r result) {
		mu.Lock()
		defer mu.Unlock()

		switch r.status {
		case StatusDone:
			report.Processed++
			report.Bytes += int64(r.bytes)
		case StatusSkipped:
			report.Skipped++
		default:
			report.Failed++
			report.Errors = append(report.Errors, FileError{Path: r.rel, Err: r.err})
		}
		if p.progress != nil {
			p.progress(Event{
				Rel:    r.rel,
				Status: r.status,
				Err:    r.err,
				Done:   report.Processed + report.Skipped + report.Failed,
				Total:  report.Total,
			})
		}
	}

	for _, a := range assets {
		if ctx.Err() != nil {
			break
		}
		a := a
		pool.Submit(func() {
			record(p.processOne(ctx, logger, a, opts))
		})
	}
	pool.Close()

	sort.Slice(report.Errors, func(i, j int) bool { return report.Errors[i].Path < report.Errors[j].Path })
	report.Duration = time.Since(start)
	p.metrics.RecordBatch(string(opts.Mode), report.Failed)

	logger.Info("batch finished",
		logging.Int("processed", report.Processed),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Latency(report.Duration),
	)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// checkOptions validates opts and normalises the flavor
func (p *Processor) checkOptions(opts *Options) error {
	if _, err := ParseMode(string(opts.Mode)); err != nil {
		return err
	}
	if (opts.Mode == ModeDecrypt || opts.Mode == ModeEncrypt) && len(opts.Key) == 0 {
		return fmt.Errorf("%w: %s needs a key", ErrKeyRequired, opts.Mode)
	}
	if opts.Mode == ModeEncrypt {
		flavor, err := asset.ParseFlavor(opts.Flavor)
		if err != nil {
			return err
		}
		opts.Flavor = string(flavor)
	}
	return nil
}

func (p *Processor) scan(root string, mode Mode) ([]asset.Asset, error) {
	if mode == ModeEncrypt {
		return asset.ScanPlain(root)
	}
	return asset.ScanEncrypted(root)
}

// processOne reads, transforms and writes a single asset
func (p *Processor) processOne(ctx context.Context, logger logging.Logger, a asset.Asset, opts Options) result {
	mode := string(opts.Mode)
	timer := logging.StartTimer(logger, "asset processed", logging.Path(a.Rel), logging.Extension(a.Extension))

	p.metrics.BatchInFlight.Inc()
	defer p.metrics.BatchInFlight.Dec()

	if err := ctx.Err(); err != nil {
		return result{rel: a.Rel, status: StatusFailed, err: err}
	}

	buf := pools.GetBytes(int(a.Size))
	defer pools.PutBytes(buf)

	out, name, err := p.transform(a, opts, buf)
	if errors.Is(err, errSkip) {
		logger.Warn("asset skipped, no key for non-image asset", logging.Path(a.Rel))
		p.metrics.RecordAsset(mode, metrics.StatusSkipped, 0, 0)
		return result{rel: a.Rel, status: StatusSkipped}
	}
	if err == nil {
		err = p.sink.Write(ctx, name, out)
	}
	if err != nil {
		timer.EndError(err)
		p.metrics.RecordAsset(mode, metrics.StatusError, 0, timer.Elapsed())
		return result{rel: a.Rel, status: StatusFailed, err: err}
	}

	timer.End(logging.Bytes(len(out)))
	p.metrics.RecordAsset(mode, metrics.StatusSuccess, len(out), timer.Elapsed())
	return result{rel: a.Rel, status: StatusDone, bytes: len(out)}
}

var errSkip = fmt.Errorf("skip")

// transform returns the new content and its output name. The content
// may alias buf, so it is only valid until buf is recycled.
func (p *Processor) transform(a asset.Asset, opts Options, buf []byte) ([]byte, string, error) {
	var name string
	var err error
	if opts.Mode == ModeEncrypt {
		name, err = a.FakeName(asset.Flavor(opts.Flavor))
	} else {
		name, err = a.RealName()
	}
	if err != nil {
		return nil, "", err
	}

	if opts.Mode == ModeRestore && a.Kind() != asset.KindImage && len(opts.Key) == 0 {
		return nil, "", errSkip
	}

	data, err := asset.LoadInto(a.Path, buf)
	if err != nil {
		return nil, "", err
	}

	var out []byte
	switch {
	case opts.Mode == ModeEncrypt:
		out, err = p.engine.Encrypt(data, opts.Key)
	case opts.Mode == ModeRestore && a.Kind() == asset.KindImage:
		out, err = p.engine.RestoreKnownHeaderInPlace(data, obfuscation.PNGHeader())
	default:
		out, err = p.engine.DecryptInPlace(data, opts.Key)
	}
	if err != nil {
		return nil, "", err
	}
	return out, name, nil
}

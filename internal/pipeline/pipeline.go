package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"takeslice/internal/config"
	"takeslice/internal/encoder"
	"takeslice/internal/ledger"
	"takeslice/internal/logging"
	"takeslice/internal/offsetcache"
	"takeslice/internal/services"
	"takeslice/internal/session"
	"takeslice/internal/slicer"
	"takeslice/internal/synchronizer"
)

// LockFileName is created inside the output directory while a run holds it.
const LockFileName = ".takeslice.lock"

// Option configures a Runner.
type Option func(*Runner)

// WithPromptIO sets the streams used to ask the operator for offsets.
func WithPromptIO(in io.Reader, out io.Writer) Option {
	return func(r *Runner) {
		r.in = in
		r.out = out
	}
}

// WithExtractor replaces the ffmpeg encoder (primarily for tests).
func WithExtractor(extractor encoder.Extractor) Option {
	return func(r *Runner) {
		r.extractor = extractor
	}
}

// WithFallback replaces the strategy used on offset cache misses.
func WithFallback(sync synchronizer.Synchronizer) Option {
	return func(r *Runner) {
		r.fallback = sync
	}
}

// WithoutVideo slices audio tracks only.
func WithoutVideo() Option {
	return func(r *Runner) {
		r.noVideo = true
	}
}

// WithObserver receives every finished job.
func WithObserver(fn func(slicer.JobResult)) Option {
	return func(r *Runner) {
		r.observer = fn
	}
}

// Runner executes slicing runs for one configuration.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	in        io.Reader
	out       io.Writer
	extractor encoder.Extractor
	fallback  synchronizer.Synchronizer
	observer  func(slicer.JobResult)
	noVideo   bool
}

// New constructs a Runner.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		in:     os.Stdin,
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one slicing pass. The returned error is non-nil only when the
// run was aborted; per-session and per-job failures are reported in Summary.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	if err := r.cfg.ValidateRun(); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "run", "validate", "", err)
	}
	outputDir := r.cfg.Paths.OutputDir
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "run", "create output directory", outputDir, err)
	}

	lock := flock.New(filepath.Join(outputDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return summary, services.Wrap(services.ErrTransient, "run", "acquire lock", "", err)
	}
	if !locked {
		return summary, services.Wrap(services.ErrBusy, "run", "acquire lock", "another takeslice run is using "+outputDir, nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	store, run := r.beginLedger(ctx, outputDir)
	if store != nil {
		defer store.Close()
		summary.RunID = run.ID
		ctx = services.WithRunID(ctx, run.ID)
	}
	logger := logging.WithContext(ctx, r.logger)

	summary, err = r.execute(ctx, logger, summary)
	r.finishLedger(ctx, logger, store, run, summary, err)
	return summary, err
}

func (r *Runner) execute(ctx context.Context, logger *slog.Logger, summary Summary) (Summary, error) {
	dirs, err := session.Discover(r.cfg.Paths.SessionsDir)
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "run", "discover sessions", r.cfg.Paths.SessionsDir, err)
	}

	builder := slicer.NewBuilder(r.logger)
	for _, dir := range dirs {
		id := filepath.Base(dir)
		raw, err := session.ReadDir(dir)
		if err == nil {
			err = builder.RegisterSession(raw)
		}
		if err != nil {
			summary.Issues = append(summary.Issues, Issue{SessionID: id, Stage: StageLoad, Err: err})
			logging.WarnWithContext(logger, "session skipped", "session_load_failed",
				logging.String(logging.FieldSessionID, id),
				logging.Error(err),
				logging.String(logging.FieldImpact, "no takes extracted for this session"),
				logging.String(logging.FieldErrorHint, "fix metadata.json, takes.csv or audio.wav and re-run"))
		}
	}
	summary.Sessions = len(builder.IDs())
	logger.Info("sessions registered",
		logging.Int("registered", summary.Sessions),
		logging.Int("skipped", len(summary.Issues)))

	if !r.noVideo && r.cfg.Paths.VideoDir != "" {
		if err := r.attachVideo(ctx, logger, builder, &summary); err != nil {
			return summary, err
		}
	}

	extractor, err := r.newExtractor()
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "run", "encoder", "", err)
	}
	opts := []slicer.Option{slicer.WithWorkers(r.cfg.Encoder.Workers)}
	if r.observer != nil {
		opts = append(opts, slicer.WithObserver(r.observer))
	}
	report, err := builder.Build(extractor, opts...).PerformSlicing(ctx, r.cfg.Paths.OutputDir)
	summary.Report = report
	return summary, err
}

// attachVideo resolves and attaches a video track for every registered
// session. It runs before any encoder job so operator prompts never
// interleave with slicing.
func (r *Runner) attachVideo(ctx context.Context, logger *slog.Logger, builder *slicer.Builder, summary *Summary) error {
	cache, err := offsetcache.Load(r.cfg.OffsetCachePath(), r.logger)
	if err != nil {
		logging.WarnWithContext(logger, "offset cache unusable; starting empty", "offset_cache_unusable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "every video offset will be resolved again"),
			logging.String(logging.FieldErrorHint, "the file is rewritten after this run's offsets are resolved"))
	}

	prompter := synchronizer.NewPrompter(r.in, r.out)
	sync := synchronizer.NewCacheBacked(cache, r.fallbackFor(prompter), r.cacheOptions(prompter)...)

	for _, id := range builder.IDs() {
		sessCtx := services.WithSessionID(services.WithStage(ctx, StageSync), id)
		sessLogger := logging.WithContext(sessCtx, r.logger)

		video, ok, err := session.MatchVideo(r.cfg.Paths.VideoDir, id)
		if err != nil {
			return services.Wrap(services.ErrConfiguration, "run", "list videos", r.cfg.Paths.VideoDir, err)
		}
		if !ok {
			logging.WarnWithContext(sessLogger, "no video found for session", "video_missing",
				logging.String(logging.FieldImpact, "only the audio track is sliced"),
				logging.String(logging.FieldErrorHint, "name the video <id>.mp4 or <prefix>-<id>.mp4 in the video directory"))
			continue
		}

		offset, err := sync.Resolve(sessCtx, video)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				// Keep offsets the operator already entered.
				if err := r.saveCache(cache, summary); err != nil {
					logging.WarnWithContext(logger, "offset cache not saved after cancellation", "offset_cache_save_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "offsets entered this run will be asked for again"),
						logging.String(logging.FieldErrorHint, "check permissions on "+cache.Path()))
				}
				return ctxErr
			}
			summary.Issues = append(summary.Issues, Issue{SessionID: id, Stage: StageSync, Err: err})
			logging.WarnWithContext(sessLogger, "video not synchronized", "video_sync_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "only the audio track is sliced"),
				logging.String(logging.FieldErrorHint, "check the video file and re-run"))
			continue
		}
		if err := builder.AddTrack(id, session.Track{File: video, SyncOffset: offset}); err != nil {
			return err
		}
		summary.VideosAttached++
	}

	return r.saveCache(cache, summary)
}

func (r *Runner) saveCache(cache *offsetcache.Cache, summary *Summary) error {
	if !cache.Dirty() {
		return nil
	}
	if err := cache.Save(); err != nil {
		return services.Wrap(services.ErrTransient, "run", "save offset cache", cache.Path(), err)
	}
	summary.CacheSaved = true
	return nil
}

func (r *Runner) fallbackFor(prompter *synchronizer.Prompter) synchronizer.Synchronizer {
	if r.fallback != nil {
		return r.fallback
	}
	if r.cfg.Sync.Strategy == config.StrategyCorrelation {
		return synchronizer.ContentCorrelation{}
	}
	opts := []synchronizer.InteractiveOption{synchronizer.WithLogger(r.logger)}
	if r.cfg.Sync.Probe {
		opts = append(opts, synchronizer.WithProber(synchronizer.FFprobe{Binary: r.cfg.Encoder.FFprobeBinary}))
	}
	return synchronizer.NewInteractive(prompter, opts...)
}

func (r *Runner) cacheOptions(prompter *synchronizer.Prompter) []synchronizer.CacheOption {
	opts := []synchronizer.CacheOption{synchronizer.WithCacheLogger(r.logger)}
	if r.cfg.Sync.ConfirmCached {
		opts = append(opts, synchronizer.WithConfirm(prompter))
	}
	return opts
}

func (r *Runner) newExtractor() (encoder.Extractor, error) {
	if r.extractor != nil {
		return r.extractor, nil
	}
	return encoder.New(r.cfg.Encoder.FFmpegBinary,
		encoder.WithVideoCodec(r.cfg.Encoder.VideoCodec),
		encoder.WithThreads(r.cfg.Encoder.ThreadsPerJob),
		encoder.WithLogger(r.logger))
}

func (r *Runner) beginLedger(ctx context.Context, outputDir string) (*ledger.Store, ledger.Run) {
	if !r.cfg.Ledger.Enabled {
		return nil, ledger.Run{}
	}
	store, err := ledger.Open(r.cfg.LedgerPath())
	if err == nil {
		var run ledger.Run
		run, err = store.BeginRun(ctx, outputDir)
		if err == nil {
			return store, run
		}
		store.Close()
	}
	logging.WarnWithContext(r.logger, "run ledger unavailable", "ledger_unavailable",
		logging.Error(err),
		logging.String(logging.FieldImpact, "this run is not recorded in history"),
		logging.String(logging.FieldErrorHint, "check ledger.path or disable the ledger"))
	return nil, ledger.Run{}
}

func (r *Runner) finishLedger(ctx context.Context, logger *slog.Logger, store *ledger.Store, run ledger.Run, summary Summary, runErr error) {
	if store == nil {
		return
	}
	// Record even when the run context was cancelled.
	ctx = context.WithoutCancel(ctx)

	jobs := make([]ledger.Job, 0, len(summary.Report.Results))
	for _, res := range summary.Report.Results {
		job := ledger.Job{
			SessionID:  res.Job.SessionID,
			ChunkID:    res.Job.ChunkID,
			TakeIndex:  res.Job.TakeIndex,
			TrackIndex: res.Job.TrackIndex,
			Output:     res.Job.Output,
			State:      string(res.State),
			Elapsed:    res.Elapsed,
		}
		if res.Err != nil {
			job.ErrorMessage = res.Err.Error()
		}
		jobs = append(jobs, job)
	}
	if err := store.RecordJobs(ctx, run.ID, jobs); err != nil {
		logger.Warn("failed to record jobs", logging.Error(err))
	}

	run.SessionCount = summary.Sessions
	run.Succeeded = summary.Report.Succeeded
	run.Skipped = summary.Report.Skipped
	run.Failed = summary.Report.Failed
	switch {
	case runErr != nil:
		run.Status = ledger.RunAborted
		run.ErrorMessage = runErr.Error()
	case summary.Failed():
		run.Status = ledger.RunPartial
		if err := summary.Err(); err != nil {
			run.ErrorMessage = truncate(err.Error(), 2000)
		}
	default:
		run.Status = ledger.RunCompleted
	}
	if err := store.FinishRun(ctx, run); err != nil {
		logger.Warn("failed to finish ledger run", logging.Error(err))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// IsBusy reports whether err means another run holds the output directory.
func IsBusy(err error) bool {
	return errors.Is(err, services.ErrBusy)
}

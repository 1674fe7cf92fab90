package convert

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/hkxbatch/internal/converter"
	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
	"github.com/slok/hkxbatch/internal/outpath"
	"github.com/slok/hkxbatch/internal/storage"
	"github.com/slok/hkxbatch/internal/utils/file"
)

// ConverterFactory returns the converter of a tool.
type ConverterFactory func(tool model.ConverterTool) (converter.Converter, error)

// ServiceConfig is the configuration for the convert service.
type ServiceConfig struct {
	ConverterFactory ConverterFactory
	// History stores every finished batch. Optional.
	History storage.HistoryRepository
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.ConverterFactory == nil {
		return fmt.Errorf("converter factory is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Convert"})
	return nil
}

// Service runs conversion batches, one at a time.
type Service struct {
	newConverter ConverterFactory
	history      storage.HistoryRepository
	logger       log.Logger

	mu      sync.Mutex
	current *Batch
}

// NewService creates a new convert service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		newConverter: cfg.ConverterFactory,
		history:      cfg.History,
		logger:       cfg.Logger,
	}, nil
}

// State returns the state of the last started batch, idle if none was started.
func (s *Service) State() model.BatchState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return model.BatchStateIdle
	}
	return s.current.State()
}

// Start validates the request and starts converting it in the background. Invalid
// requests fail here and nothing runs.
//
// Cancelling ctx (or calling Batch.Cancel) stops dispatching new jobs, jobs already
// running are not interrupted.
func (s *Service) Start(ctx context.Context, req model.BatchRequest) (*Batch, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batch: %w", err)
	}

	conv, err := s.newConverter(req.Tool)
	if err != nil {
		return nil, fmt.Errorf("could not create %s converter: %w", req.Tool.Label(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.State() == model.BatchStateRunning {
		return nil, fmt.Errorf("batch %s is already running: %w", s.current.ID, model.ErrValidation)
	}

	b := newBatch(newID(), len(req.Inputs))
	s.current = b

	logger := s.logger.WithValues(log.Kv{"batch": b.ID})
	logger.Infof("Starting batch of %d files with %s to %s", len(req.Inputs), req.Tool.Label(), req.Format.Label())

	// Already cancelled contexts cancel before the first job.
	if ctx.Err() != nil {
		b.Cancel()
	}
	go func() {
		select {
		case <-ctx.Done():
			b.Cancel()
		case <-b.done:
		}
	}()

	go s.run(ctx, b, conv, req, logger)

	return b, nil
}

func (s *Service) run(ctx context.Context, b *Batch, conv converter.Converter, req model.BatchRequest, logger log.Logger) {
	total := len(req.Inputs)
	outcome := model.BatchOutcome{
		BatchID:   b.ID,
		Total:     total,
		StartedAt: time.Now().UTC(),
	}

	// Without base folder, multiple inputs keep their layout below their common ancestor.
	groupRoot := ""
	if req.BaseFolder == "" {
		groupRoot = outpath.CommonDir(req.Inputs)
	}

	var wg sync.WaitGroup
	results := make([]*model.JobOutcome, total)
	// outputs maps each claimed output path to the job index writing it.
	outputs := make(map[string]int, total)
	// stoppedAt is the first job not dispatched because of a cancel.
	stoppedAt := total
	for i, input := range req.Inputs {
		if b.cancelRequested() {
			logger.Warningf("Batch cancelled, %d of %d files not dispatched", total-i, total)
			stoppedAt = i
			break
		}

		job := model.ConversionJob{
			ID:                newID(),
			Index:             i,
			Total:             total,
			InputPath:         input,
			Tool:              req.Tool,
			Format:            req.Format,
			SkeletonPath:      req.SkeletonPath,
			Suffix:            req.Suffix,
			ExtensionOverride: req.ExtensionOverride,
		}

		out, err := outpath.Resolve(outpath.Options{
			Input:             input,
			OutputRoot:        req.OutputRoot,
			BaseFolder:        req.BaseFolder,
			GroupRoot:         groupRoot,
			Suffix:            req.Suffix,
			Extension:         req.Format.Extension(),
			ExtensionOverride: req.ExtensionOverride,
		})
		if err != nil {
			results[i] = b.failJob(job, fmt.Errorf("could not resolve output path: %w: %w", model.ErrValidation, err))
			continue
		}
		job.OutputPath = out

		if prev, ok := outputs[out]; ok {
			results[i] = b.failJob(job, fmt.Errorf("output %q is already written by file %d: %w", out, prev+1, model.ErrValidation))
			continue
		}
		outputs[out] = i

		b.emit(model.ProgressEvent{Kind: model.EventKindQueued, File: input, OutputPath: out, Index: i, Total: total})

		if err := file.EnsureParentDir(out); err != nil {
			results[i] = b.failJob(job, fmt.Errorf("could not create output directory: %w: %w", model.ErrIO, err))
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.runJob(ctx, b, conv, job, req.JobTimeout, logger)
		}()
	}

	wg.Wait()

	for _, r := range results {
		if r == nil {
			continue
		}
		outcome.Jobs = append(outcome.Jobs, *r)
		if r.Err != nil {
			outcome.Failed++
		} else {
			outcome.Succeeded++
		}
	}
	outcome.FinishedAt = time.Now().UTC()

	// Checked again so cancelling during the tail of the batch suppresses the summary.
	// The cancelled event is sent once the in-flight jobs are done so it is always
	// the last one.
	cancelled := b.cancelRequested()

	state := model.BatchStateCompleted
	switch {
	case cancelled:
		state = model.BatchStateCancelled
		outcome.Cancelled = true
		outcome.Message = msgCancelled
	case outcome.Failed > 0:
		outcome.Message = fmt.Sprintf("Converted %d of %d files (%d failed)", outcome.Succeeded, total, outcome.Failed)
	default:
		outcome.Message = fmt.Sprintf("Successfully converted %d of %d files", outcome.Succeeded, total)
	}

	if cancelled {
		b.emit(model.ProgressEvent{Kind: model.EventKindCancelled, Index: stoppedAt, Total: total, Cause: msgCancelled})
	} else {
		summary := outcome
		b.emit(model.ProgressEvent{Kind: model.EventKindCompleted, Index: total, Total: total, Outcome: &summary})
	}

	logger.Infof("%s (%d succeeded, %d failed)", outcome.Message, outcome.Succeeded, outcome.Failed)

	if s.history != nil {
		// The batch context may be cancelled already, history is saved anyway.
		if err := s.history.SaveBatch(context.WithoutCancel(ctx), model.NewBatchRecord(req, outcome)); err != nil {
			logger.Errorf("Could not save batch history: %s", err)
		}
	}

	b.finish(state, outcome)
}

// runJob converts a job. The converter runs detached from the batch cancellation,
// external processes are never interrupted by a cancel, only by the job timeout.
func (s *Service) runJob(ctx context.Context, b *Batch, conv converter.Converter, job model.ConversionJob, timeout time.Duration, logger log.Logger) *model.JobOutcome {
	b.emit(model.ProgressEvent{Kind: model.EventKindRunning, File: job.InputPath, OutputPath: job.OutputPath, Index: job.Index, Total: job.Total})

	jobCtx := context.WithoutCancel(ctx)
	if timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(jobCtx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := conv.Convert(jobCtx, job)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", model.ErrTimeout, err)
	}
	duration := time.Since(start)

	if err != nil {
		logger.WithValues(log.Kv{"job": job.ID}).Warningf("Failed converting %q: %s", job.InputPath, err)
		o := b.failJob(job, err)
		o.Duration = duration
		return o
	}

	b.emit(model.ProgressEvent{Kind: model.EventKindSucceeded, File: job.InputPath, OutputPath: job.OutputPath, Index: job.Index, Total: job.Total})
	return &model.JobOutcome{
		Index:      job.Index,
		InputPath:  job.InputPath,
		OutputPath: job.OutputPath,
		Duration:   duration,
	}
}

const msgCancelled = "Conversion cancelled by user"

// Batch is a running conversion batch.
type Batch struct {
	// ID is the unique batch ID.
	ID string

	stream     *eventStream
	cancelCh   chan struct{}
	cancelOnce sync.Once
	done       chan struct{}

	mu      sync.Mutex
	state   model.BatchState
	outcome model.BatchOutcome
}

func newBatch(id string, total int) *Batch {
	return &Batch{
		ID:       id,
		stream:   newEventStream(),
		cancelCh: make(chan struct{}),
		done:     make(chan struct{}),
		state:    model.BatchStateRunning,
		outcome:  model.BatchOutcome{BatchID: id, Total: total},
	}
}

// Events returns the progress stream. It is closed after the terminal event
// (completed or cancelled). Events are queued without limit until they are read.
func (b *Batch) Events() <-chan model.ProgressEvent { return b.stream.events() }

// Cancel requests the batch to stop dispatching jobs. Safe to call many times.
func (b *Batch) Cancel() {
	b.cancelOnce.Do(func() { close(b.cancelCh) })
}

// Done is closed when every dispatched job has finished.
func (b *Batch) Done() <-chan struct{} { return b.done }

// Wait blocks until the batch finishes and returns its outcome.
func (b *Batch) Wait() model.BatchOutcome {
	<-b.done
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outcome
}

// State returns the current batch state.
func (b *Batch) State() model.BatchState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Batch) cancelRequested() bool {
	select {
	case <-b.cancelCh:
		return true
	default:
		return false
	}
}

func (b *Batch) emit(ev model.ProgressEvent) {
	ev.At = time.Now().UTC()
	b.stream.send(ev)
}

func (b *Batch) failJob(job model.ConversionJob, err error) *model.JobOutcome {
	b.emit(model.ProgressEvent{
		Kind:       model.EventKindFailed,
		File:       job.InputPath,
		OutputPath: job.OutputPath,
		Index:      job.Index,
		Total:      job.Total,
		Cause:      err.Error(),
		Err:        err,
	})

	return &model.JobOutcome{
		Index:      job.Index,
		InputPath:  job.InputPath,
		OutputPath: job.OutputPath,
		Err:        err,
	}
}

func (b *Batch) finish(state model.BatchState, outcome model.BatchOutcome) {
	b.mu.Lock()
	b.state = state
	b.outcome = outcome
	b.mu.Unlock()

	b.stream.close()
	close(b.done)
}

func newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
}

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"roomdesk/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SheetsMirrorClient is the slice of the spreadsheet mirror the worker
// drives.
type SheetsMirrorClient interface {
	AppendSubmission(ctx context.Context, rec models.SubmissionRecord) error
}

// RetryPolicy spaces out retries of failed mirror appends: the delay
// doubles from BaseDelay on every attempt, capped at MaxDelay.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// NextDelay returns the wait before retrying a given attempt (1-based).
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	d := r.BaseDelay
	if d <= 0 {
		d = time.Second
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if r.MaxDelay > 0 && d >= r.MaxDelay {
			return r.MaxDelay
		}
	}
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	return d
}

// MirrorWorker moves journaled submissions into the spreadsheet mirror.
// Tasks go through Redis when available so a restart does not lose them;
// otherwise a bounded in-memory queue carries them.
type MirrorWorker struct {
	mirror      SheetsMirrorClient
	redis       *redis.Client
	retryPolicy RetryPolicy
	queue       chan mirrorTask
	queueKey    string
	deadKey     string
	logger      *zerolog.Logger
}

type mirrorTask struct {
	Record  models.SubmissionRecord `json:"record"`
	Attempt int                     `json:"attempt"`
}

func NewMirrorWorker(mirror SheetsMirrorClient, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *MirrorWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.BaseDelay == 0 {
		retry.BaseDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}

	return &MirrorWorker{
		mirror:      mirror,
		redis:       redisClient,
		retryPolicy: retry,
		queue:       make(chan mirrorTask, models.MirrorQueueSize),
		queueKey:    "mirror:queue",
		deadKey:     "mirror:deadletter",
		logger:      logger,
	}
}

// EnqueueSubmission schedules a submission for mirroring.
func (w *MirrorWorker) EnqueueSubmission(ctx context.Context, rec models.SubmissionRecord) error {
	task := mirrorTask{Record: rec}

	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Warn().Err(err).Msg("mirror: redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	select {
	case w.queue <- task:
		return nil
	default:
		return errors.New("mirror queue is full")
	}
}

// Start launches the main loop; stops when ctx is done.
func (w *MirrorWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("mirror worker started")
	defer w.logger.Info().Msg("mirror worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case task := <-w.queue:
			w.process(ctx, task)
		default:
			if task, ok := w.tryRedis(ctx); ok {
				w.process(ctx, task)
				continue
			}
			select {
			case <-ctx.Done():
				return
			case task := <-w.queue:
				w.process(ctx, task)
			case <-time.After(time.Second):
			}
		}
	}
}

func (w *MirrorWorker) tryRedis(ctx context.Context) (mirrorTask, bool) {
	if w.redis == nil {
		return mirrorTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			w.logger.Warn().Err(err).Msg("mirror: redis BRPOP error")
		}
		return mirrorTask{}, false
	}
	if len(res) != 2 {
		return mirrorTask{}, false
	}
	var task mirrorTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("mirror: decode redis task")
		return mirrorTask{}, false
	}
	return task, true
}

func (w *MirrorWorker) process(ctx context.Context, task mirrorTask) {
	err := w.mirror.AppendSubmission(ctx, task.Record)
	if err == nil {
		return
	}

	task.Attempt++
	if task.Attempt >= w.retryPolicy.MaxRetries {
		w.logger.Error().Err(err).
			Str("session_id", task.Record.SessionID).
			Int("attempts", task.Attempt).
			Msg("mirror: giving up on submission")
		w.pushDeadLetter(ctx, task)
		return
	}

	delay := w.retryPolicy.NextDelay(task.Attempt)
	w.logger.Warn().Err(err).
		Str("session_id", task.Record.SessionID).
		Dur("retry_in", delay).
		Msg("mirror: append failed, will retry")

	time.AfterFunc(delay, func() {
		select {
		case w.queue <- task:
		default:
			w.pushDeadLetter(context.Background(), task)
		}
	})
}

func (w *MirrorWorker) pushRedis(ctx context.Context, task mirrorTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.queueKey, data).Err()
}

func (w *MirrorWorker) pushDeadLetter(ctx context.Context, task mirrorTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		return
	}
	if err := w.redis.LPush(ctx, w.deadKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Msg("mirror: deadletter push failed")
	}
}

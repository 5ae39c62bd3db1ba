package invite

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
)

// Worker drains the invite queue, delivering every job at most once per student.
type Worker struct {
	svc     *Service
	queue   core.Queue
	logger  core.Logger
	observe func(Outcome)
}

// NewWorker returns a worker consuming queue. observe, if not nil, is called with the outcome of every message.
func NewWorker(svc *Service, queue core.Queue, logger core.Logger, observe func(Outcome)) *Worker {
	if observe == nil {
		observe = func(Outcome) {}
	}
	return &Worker{
		svc:     svc,
		queue:   queue,
		logger:  logger,
		observe: observe,
	}
}

// Run delivers queued jobs until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.queue.Consume(ctx)
	if err != nil {
		return errors.Wrap(err, "consuming invite queue")
	}
	for msg := range msgs {
		w.observe(w.Handle(ctx, msg))
	}
	return nil
}

// Handle delivers the job carried by msg. Failures are logged and reported as Failed.
func (w *Worker) Handle(ctx context.Context, msg core.Message) Outcome {
	job, err := DecodeJob(msg)
	if err != nil {
		w.logger.Error("dropping invite message", err)
		return Failed
	}

	outcome, err := w.svc.Deliver(ctx, job)
	extra := map[string]interface{}{"studentId": job.StudentID, "outcome": outcome}
	if err != nil {
		w.logger.Error("delivering invite", err, extra)
		return outcome
	}
	w.logger.Info("invite processed", extra)
	return outcome
}

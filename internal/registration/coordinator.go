// internal/registration/coordinator.go
//
// Regform - Registration subsystem: submission coordinator.
//
// Context
//   Submit sends a valid form's record to the users API and reports one of
//   two terminal outcomes.  On success the form resets and a success toast
//   fires; on failure the form is left alone so the user can retry, and a
//   failure toast fires.  Error subtypes are not distinguished for the user.
//
//   The coordinator tracks in-flight state so the UI can disable its submit
//   control and show a pending label.  It does not retry, time out, or
//   deduplicate; a second Submit while one is outstanding simply runs.
//
//------------------------------------------------------------------------------

package registration

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/yanizio/regform/internal/metrics"
)

// ErrNotSubmittable is returned when Submit is called on an invalid form.
var ErrNotSubmittable = errors.New("registration: form is not submittable")

// Submitter transmits a record to the remote endpoint.  Any non-nil error is
// a transport failure.
type Submitter interface {
	Submit(ctx context.Context, rec Record) error
}

// Outcome is the terminal state of one submission.
type Outcome struct {
	Success bool
	Err     error // transport error on failure; nil on success
	Dropped bool  // form was discarded before the response arrived
}

// Coordinator runs submissions for one form owner.
type Coordinator struct {
	api      Submitter
	notifier Notifier
	inFlight atomic.Int32
}

// NewCoordinator wires a submitter and a notifier.  A nil notifier discards
// notifications.
func NewCoordinator(api Submitter, n Notifier) *Coordinator {
	if n == nil {
		n = NotifierFunc(func(context.Context, Notification) {})
	}
	return &Coordinator{api: api, notifier: n}
}

// InFlight reports whether a submission is outstanding.
func (c *Coordinator) InFlight() bool { return c.inFlight.Load() > 0 }

// Submit validates f once more, transmits its record, and applies the
// outcome.  The returned error is ErrNotSubmittable for an invalid form and
// the transport error on failure.
func (c *Coordinator) Submit(ctx context.Context, f *Form) (Outcome, error) {
	res := f.Result()
	if !res.Valid {
		for field := range res.Errors {
			metrics.ValidationFailuresTotal.WithLabelValues(field).Inc()
		}
		return Outcome{}, fmt.Errorf("%w: %w", ErrNotSubmittable, res.Err())
	}
	rec := f.Record()

	c.inFlight.Add(1)
	metrics.SubmissionsInFlight.Inc()
	err := c.api.Submit(ctx, rec)
	c.inFlight.Add(-1)
	metrics.SubmissionsInFlight.Dec()

	if f.Discarded() {
		zap.S().Debugw("submission outcome dropped, form discarded", "err", err)
		metrics.SubmissionsTotal.WithLabelValues("dropped").Inc()
		return Outcome{Success: err == nil, Err: err, Dropped: true}, err
	}

	if err != nil {
		zap.S().Warnw("registration submit failed", "email", rec.Email, "err", err)
		metrics.SubmissionsTotal.WithLabelValues("failure").Inc()
		c.notifier.Notify(ctx, Notification{Level: LevelError, Message: MsgFailed})
		return Outcome{Err: err}, err
	}

	if !f.Reset() {
		// Discarded between the check above and the reset.
		metrics.SubmissionsTotal.WithLabelValues("dropped").Inc()
		return Outcome{Success: true, Dropped: true}, nil
	}
	zap.S().Infow("registration submitted", "email", rec.Email, "country", rec.Country)
	metrics.SubmissionsTotal.WithLabelValues("success").Inc()
	c.notifier.Notify(ctx, Notification{Level: LevelSuccess, Message: MsgSubmitted})
	return Outcome{Success: true}, nil
}

// Go runs Submit asynchronously and delivers the outcome on the returned
// channel, which is buffered so an abandoned receiver never blocks the task.
func (c *Coordinator) Go(ctx context.Context, f *Form) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		o, err := c.Submit(ctx, f)
		if o.Err == nil && err != nil {
			o.Err = err
		}
		out <- o
	}()
	return out
}

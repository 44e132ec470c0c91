package broute

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
)

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

type flusher interface {
	Flush() error
}

// aLongTimeAgo is a deadline in the past, setting it unblocks pending writes immediately.
var aLongTimeAgo = time.Unix(1, 0)

// writeContext writes p to w. If w supports write deadlines, cancellation of ctx interrupts a blocked
// write. A write that fails because ctx ended returns an error that matches the context's error.
func writeContext(ctx context.Context, w io.Writer, p []byte) (int, error) {
	var n int
	err := interruptible(ctx, w, func() (err error) {
		n, err = w.Write(p)
		return err
	})

	return n, err
}

// flushContext flushes w if it buffers output.
func flushContext(ctx context.Context, w io.Writer) error {
	f, ok := w.(flusher)
	if !ok {
		return nil
	}

	return interruptible(ctx, w, f.Flush)
}

func interruptible(ctx context.Context, w io.Writer, op func() error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "before write")
	}

	if d, ok := w.(writeDeadliner); ok && ctx.Done() != nil {
		fired := make(chan struct{})
		stop := context.AfterFunc(ctx, func() {
			_ = d.SetWriteDeadline(aLongTimeAgo)
			close(fired)
		})

		defer func() {
			if !stop() {
				<-fired
				_ = d.SetWriteDeadline(time.Time{})
			}
		}()
	}

	if err := op(); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return errors.Wrapf(cerr, "write interrupted (%v)", err)
		}

		return err
	}

	return nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

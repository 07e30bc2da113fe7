package importer

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/vmunix/reelarr/internal/archive"
)

// retry runs op, retrying transient failures up to i.retries extra times
// with exponential backoff. Non-transient errors return immediately.
func (i *Importer) retry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		if err == nil || attempt >= i.retries || !transient(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(i.retryDelay << attempt):
		}
	}
}

// transient reports whether err is worth retrying: gateway outages and
// timeouts, not lookup misses or malformed payloads.
func transient(err error) bool {
	if errors.Is(err, archive.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

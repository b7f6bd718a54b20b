package notifier

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/versecue/internal/models"
	"github.com/julianstephens/versecue/internal/ui"
)

// WriterDeliverer prints notifications instead of showing them.
type WriterDeliverer struct {
	w   io.Writer
	loc *time.Location
}

func NewWriterDeliverer(w io.Writer, loc *time.Location) *WriterDeliverer {
	if loc == nil {
		loc = time.Local
	}
	return &WriterDeliverer{w: w, loc: loc}
}

func (d *WriterDeliverer) Deliver(ctx context.Context, n models.ScheduledNotification) error {
	_, err := fmt.Fprintln(d.w, ui.Card(n, d.loc))
	return err
}

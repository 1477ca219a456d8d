package realtime

import (
	"context"
	"errors"
)

// Fanout publishes to every sink and joins their errors. One failing sink
// does not stop the others.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev BillEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package repo

import (
	"context"

	"go.uber.org/multierr"
)

// Multi fans writes out to several stores; reads come from the first store
// that yields a snapshot. One failing store does not stop the others; Save
// returns every failure combined.
type Multi []SnapshotStore

var _ SnapshotStore = Multi(nil)

func (m Multi) Save(ctx context.Context, s *Snapshot) error {
	var err error
	for _, st := range m {
		if st == nil {
			continue
		}
		err = multierr.Append(err, st.Save(ctx, s))
	}
	return err
}

func (m Multi) Latest(ctx context.Context) (*Snapshot, error) {
	var errs error
	for _, st := range m {
		if st == nil {
			continue
		}
		snap, err := st.Latest(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if snap != nil {
			return snap, nil
		}
	}
	return nil, errs
}

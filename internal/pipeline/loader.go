package pipeline

import (
	"context"
	"errors"

	"github.com/gampnico/scintillometry-tools/internal/domain"
)

// MultiLoader fans a batch out to several loaders, typically the Kafka sink
// and the Postgres archive. Every loader sees every batch; errors are joined
// so a failing sink retries the whole batch without losing the others'
// writes, which stay safe behind idempotent estimate IDs.
type MultiLoader struct {
	loaders []BatchLoader
}

// NewMultiLoader wraps the given loaders. A single loader is returned as-is.
func NewMultiLoader(loaders ...BatchLoader) BatchLoader {
	if len(loaders) == 1 {
		return loaders[0]
	}
	return &MultiLoader{loaders: loaders}
}

func (m *MultiLoader) LoadBatch(ctx context.Context, estimates []domain.FluxEstimate) error {
	var errs []error
	for _, l := range m.loaders {
		if err := l.LoadBatch(ctx, estimates); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

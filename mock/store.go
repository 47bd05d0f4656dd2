package mock

import (
	"context"

	"github.com/fwojciec/codeharvest"
)

// Compile-time interface verification.
var (
	_ codeharvest.FragmentWriter = (*FragmentWriter)(nil)
	_ codeharvest.TargetStore    = (*TargetStore)(nil)
)

// FragmentWriter is a mock implementation of codeharvest.FragmentWriter.
type FragmentWriter struct {
	WriteFragmentFn func(ctx context.Context, path string, frag *codeharvest.Fragment) error
}

func (w *FragmentWriter) WriteFragment(ctx context.Context, path string, frag *codeharvest.Fragment) error {
	return w.WriteFragmentFn(ctx, path, frag)
}

// TargetStore is a mock implementation of codeharvest.TargetStore.
type TargetStore struct {
	SaveTargetsFn func(ctx context.Context, targets []*codeharvest.Target) error
	LoadTargetsFn func(ctx context.Context) ([]*codeharvest.Target, error)
}

func (s *TargetStore) SaveTargets(ctx context.Context, targets []*codeharvest.Target) error {
	return s.SaveTargetsFn(ctx, targets)
}

func (s *TargetStore) LoadTargets(ctx context.Context) ([]*codeharvest.Target, error) {
	return s.LoadTargetsFn(ctx)
}

package frames

import (
	"context"
	"errors"
	"sync"
)

// ErrNotReady is returned by accessors used before extraction published dimensions.
var ErrNotReady = errors.New("frames: dimensions not known yet")

// Store is the ordered frame collection filled by an extractor. Dimensions and
// completion are signalled separately, so callers may query the size of an
// animation while its frames are still being expanded.
type Store struct {
	mu       sync.Mutex
	dims     Dimensions
	hasDims  bool
	frames   []*Frame
	err      error
	dimsCh   chan struct{}
	doneCh   chan struct{}
	dimsOnce sync.Once
	doneOnce sync.Once
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		dimsCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// SetDimensions publishes the animation size. Only the first call has an effect.
func (s *Store) SetDimensions(d Dimensions) {
	s.dimsOnce.Do(func() {
		s.mu.Lock()
		s.dims, s.hasDims = d, true
		if d.Frames > 0 && len(s.frames) == 0 {
			s.frames = make([]*Frame, 0, d.Frames)
		}
		s.mu.Unlock()
		close(s.dimsCh)
		tracer().Debugf("dimensions known: %dx%d, %d frames", d.Width, d.Height, d.Frames)
	})
}

// Append adds the next frame in decode order.
func (s *Store) Append(f *Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.Index = len(s.frames)
	s.frames = append(s.frames, f)
}

// Finish marks extraction complete. A non-nil err is reported by Wait and, if no
// dimensions were published, by Dimensions as well.
func (s *Store) Finish(err error) {
	s.doneOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.doneCh)
	})
}

// DimensionsReady is closed once dimensions are known.
func (s *Store) DimensionsReady() <-chan struct{} { return s.dimsCh }

// Done is closed once extraction finished, successfully or not.
func (s *Store) Done() <-chan struct{} { return s.doneCh }

// Dimensions blocks until the size is known, extraction failed, or ctx ends.
func (s *Store) Dimensions(ctx context.Context) (Dimensions, error) {
	select {
	case <-s.dimsCh:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.dims, nil
	case <-s.doneCh:
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.hasDims {
			return s.dims, nil
		}
		if s.err != nil {
			return Dimensions{}, s.err
		}
		return Dimensions{}, ErrNotReady
	case <-ctx.Done():
		return Dimensions{}, ctx.Err()
	}
}

// Wait blocks until extraction completes and returns its error.
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.doneCh:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len returns the number of frames stored so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Frames returns the stored frames in decode order. The slice is a copy; the
// frames are shared.
func (s *Store) Frames() []*Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

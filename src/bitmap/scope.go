package bitmap

// Scope tracks bitmaps acquired during a single query invocation so that
// every exit path (success, error, or cancellation) can release pooled
// storage without the caller having to thread defer calls through every
// branch. This mirrors the teacher's pattern of scoping expensive state to
// a single Result/Run() call (see query.Result), generalized to the
// pooled-bitmap lifetime spec.md §5 requires.
type Scope struct {
	acquired []*Bitmap
}

// NewScope creates an empty acquisition scope.
func NewScope() *Scope {
	return &Scope{}
}

// New acquires a bitmap of the given length and initial value, tracking it
// for release when the scope closes.
func (s *Scope) New(length int, initial bool) *Bitmap {
	bm := New(length, initial)
	s.acquired = append(s.acquired, bm)
	return bm
}

// Track adds an already-created bitmap to this scope so it is released
// when the scope closes, without allocating a new one.
func (s *Scope) Track(bm *Bitmap) *Bitmap {
	if bm != nil {
		s.acquired = append(s.acquired, bm)
	}
	return bm
}

// Close releases every bitmap acquired through this scope. Safe to call
// multiple times.
func (s *Scope) Close() {
	for _, bm := range s.acquired {
		bm.Release()
	}
	s.acquired = nil
}

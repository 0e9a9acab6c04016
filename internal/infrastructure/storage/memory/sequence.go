package memory

import (
	"context"

	"erpledger/pkg/numerator"
)

var _ numerator.Sequencer = (*Store)(nil)

// NextValue implements numerator.Sequencer. Document sequences live in the
// state, so a rolled back transaction also gives its numbers back.
func (s *Store) NextValue(ctx context.Context, key string) (int64, error) {
	var v int64
	err := s.write(ctx, func(st *state, t *txState) error {
		v = st.next(t, key)
		return nil
	})
	return v, err
}

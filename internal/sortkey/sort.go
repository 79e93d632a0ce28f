package sortkey

import (
	"slices"

	"github.com/tuannm99/novarow/internal/record"
)

// Sort orders recs in place by key, keeping the relative order of equal records.
// Every record is checked against the key before anything moves.
func Sort(recs []record.Record, key Key) error {
	for _, r := range recs {
		if err := key.Validate(r.Len()); err != nil {
			return err
		}
	}
	slices.SortStableFunc(recs, key.Compare)
	return nil
}

package labels

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrIncompleteTable is the configuration error raised when a remapping table does
// not cover the fine domain exactly or maps to an invalid coarse id.
var ErrIncompleteTable = errors.New("remapping table does not cover the fine label domain")

// DefaultCoarse is where the remapper sends any value missing from its table.
// It only matters for out-of-domain raster values: a validated table covers the
// whole fine domain.
const DefaultCoarse = Void

// Table maps fine ids to coarse ids.
type Table map[uint8]uint8

// CityscapesToCoarse reduces the 35 fine ids to the 7 coarse classes.
var CityscapesToCoarse = Table{
	0: Void, 1: Void, 2: Void, 3: Void, 4: Void, 5: Void, 6: Void,

	7: Road,

	8: Flat, 9: Flat,

	10: Void,

	11: Construction, 12: Construction, 13: Construction,

	14: Void, 15: Void, 16: Void,

	17: Object, 18: Object, 19: Object, 20: Object,

	21: Void, 22: Void, 23: Void,

	24: Human, 25: Human,

	26: Vehicle, 27: Vehicle, 28: Vehicle, 29: Vehicle,
	30: Vehicle, 31: Vehicle, 32: Vehicle, 33: Vehicle,

	Unlabeled: Void,
}

// Validate checks that the table's keys are exactly FineDomain and that every
// target is a coarse id.
//
// Returns:
// - nil when the table is complete.
// - ErrIncompleteTable wrapped with the offending ids otherwise.
func (t Table) Validate() error {
	domain := make(map[uint8]bool, len(FineClasses))
	var missing []uint8
	for _, id := range FineDomain() {
		domain[id] = true
		if _, ok := t[id]; !ok {
			missing = append(missing, id)
		}
	}

	var extra, invalid []uint8
	for fine, coarse := range t {
		if !domain[fine] {
			extra = append(extra, fine)
		}
		if coarse >= NumCoarse {
			invalid = append(invalid, fine)
		}
	}

	if len(missing) == 0 && len(extra) == 0 && len(invalid) == 0 {
		return nil
	}

	sortIDs(missing)
	sortIDs(extra)
	sortIDs(invalid)
	return errors.Wrapf(ErrIncompleteTable,
		"missing=%v unexpected=%v invalid_target=%v", missing, extra, invalid)
}

func sortIDs(ids []uint8) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

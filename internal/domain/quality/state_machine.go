// Package quality governs QC status transitions of product batches.
package quality

import (
	"erpledger/internal/core/entity"
)

// transitions lists the inspector decisions allowed from each state.
// Quarantined has no exits.
var transitions = map[entity.QCStatus][]entity.QCStatus{
	entity.QCSellable:           {entity.QCReturnedInspection},
	entity.QCReturnedInspection: {entity.QCSellable, entity.QCQuarantined},
}

// CanTransition reports whether from → to is allowed.
func CanTransition(from, to entity.QCStatus) bool {
	from, to = from.Normalize(), to.Normalize()
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStates lists the states reachable from s.
func NextStates(s entity.QCStatus) []entity.QCStatus {
	return append([]entity.QCStatus(nil), transitions[s.Normalize()]...)
}

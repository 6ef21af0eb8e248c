package domain

import (
	"time"

	"github.com/fairwaylabs/GLM-BookingService/pkg/types"
)

// AdminDecision represents one of the three administrator decisions
type AdminDecision string

const (
	DecisionConfirm            AdminDecision = "confirm"
	DecisionReject             AdminDecision = "reject"
	DecisionProposeAlternative AdminDecision = "propose_alternative"
)

// IsValid returns true if the decision is one of the known values
func (d AdminDecision) IsValid() bool {
	return d == DecisionConfirm || d == DecisionReject || d == DecisionProposeAlternative
}

// AdminValidationRecord is the append-only audit trail of administrator
// decisions. Records are created once per decision and never mutated.
type AdminValidationRecord struct {
	ID        int64
	BookingID int64
	AdminID   int64
	Decision  AdminDecision
	Notes     string

	// Filled only for propose_alternative decisions
	AlternativeDate      *time.Time
	AlternativeStartTime *types.TimeString

	CreatedAt time.Time
}

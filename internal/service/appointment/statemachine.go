package appointment

import (
	"strings"

	"github.com/MedCore-Microservices/clinic-api/internal/model"
	apperrors "github.com/MedCore-Microservices/clinic-api/pkg/errors"
)

// allowedTransitions is the appointment lifecycle table. COMPLETED,
// CANCELLED and NO_SHOW are terminal.
var allowedTransitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusPending: {
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusInProgress,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusNoShow,
	},
	model.AppointmentStatusConfirmed: {
		model.AppointmentStatusInProgress,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusNoShow,
	},
	model.AppointmentStatusInProgress: {
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
	},
	model.AppointmentStatusCompleted: {},
	model.AppointmentStatusCancelled: {},
	model.AppointmentStatusNoShow:    {},
}

// NormalizeStatus uppercases a status value; empty means PENDING.
func NormalizeStatus(s model.AppointmentStatus) model.AppointmentStatus {
	if s == "" {
		return model.AppointmentStatusPending
	}
	return model.AppointmentStatus(strings.ToUpper(string(s)))
}

// IsValidStatus reports whether s is one of the six lifecycle values.
func IsValidStatus(s model.AppointmentStatus) bool {
	_, ok := allowedTransitions[NormalizeStatus(s)]
	return ok
}

// ValidateTransition checks the lifecycle table. All status mutation
// paths funnel through here except ForceCancel, which is a deliberate,
// named bypass.
func ValidateTransition(from, to model.AppointmentStatus) error {
	from = NormalizeStatus(from)
	to = NormalizeStatus(to)

	next, ok := allowedTransitions[from]
	if !ok {
		return apperrors.InvalidTransition(string(from), string(to))
	}

	for _, allowed := range next {
		if allowed == to {
			return nil
		}
	}
	return apperrors.InvalidTransition(string(from), string(to))
}

package appointment

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MedCore-Microservices/clinic-api/internal/model"
	"github.com/MedCore-Microservices/clinic-api/internal/service/appointment"
	"github.com/MedCore-Microservices/clinic-api/internal/service/schedule"
	apperrors "github.com/MedCore-Microservices/clinic-api/pkg/errors"
	"github.com/MedCore-Microservices/clinic-api/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.GET("/patient/:id", h.ListByPatient)
		appointments.GET("/doctor/:id", h.ListByDoctor)
		appointments.PATCH("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.CancelAppointment)
		appointments.POST("/:id/confirm", h.transitionTo(model.AppointmentStatusConfirmed))
		appointments.POST("/:id/start", h.transitionTo(model.AppointmentStatusInProgress))
		appointments.POST("/:id/complete", h.transitionTo(model.AppointmentStatusCompleted))
		appointments.POST("/:id/no-show", h.transitionTo(model.AppointmentStatusNoShow))
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput(err.Error(), err))
		return
	}

	date, err := combineDateTime(req.Date, req.Time)
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput(err.Error(), err))
		return
	}

	apt, err := h.service.Create(c.Request.Context(), &appointment.CreateAppointmentInput{
		PatientID:        req.PatientID,
		DoctorID:         req.DoctorID,
		SpecializationID: req.SpecializationID,
		MedicalRecordID:  req.MedicalRecordID,
		Date:             date,
		Reason:           req.Reason,
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput("invalid appointment ID", err))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ListByPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput("invalid patient ID", err))
		return
	}

	appointments, err := h.service.ListByPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) ListByDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput("invalid doctor ID", err))
		return
	}

	appointments, err := h.service.ListByDoctor(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput("invalid appointment ID", err))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput(err.Error(), err))
		return
	}

	patch := &model.AppointmentPatch{
		DoctorID:         req.DoctorID,
		SpecializationID: req.SpecializationID,
		MedicalRecordID:  req.MedicalRecordID,
		Reason:           req.Reason,
		Status:           req.Status,
	}

	if req.Date != nil || req.Time != nil {
		dateStr := ""
		timeStr := ""
		if req.Date != nil {
			dateStr = *req.Date
		}
		if req.Time != nil {
			timeStr = *req.Time
		}
		date, err := combineDateTime(dateStr, timeStr)
		if err != nil {
			httputil.RespondWithError(c, apperrors.InvalidInput(err.Error(), err))
			return
		}
		patch.Date = &date
	}

	apt, err := h.service.Update(c.Request.Context(), id, patch)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

// CancelAppointment always succeeds for an existing appointment,
// regardless of its current status.
func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput("invalid appointment ID", err))
		return
	}

	apt, err := h.service.ForceCancel(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) transitionTo(target model.AppointmentStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			httputil.RespondWithError(c, apperrors.InvalidInput("invalid appointment ID", err))
			return
		}

		apt, err := h.service.Transition(c.Request.Context(), id, target)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		httputil.RespondWithSuccess(c, apt)
	}
}

// combineDateTime joins a date and a wall-clock time into one instant.
// With both present the instant is "<date>T<time>"; with only a date the
// day parses at local midnight.
func combineDateTime(date, clock string) (time.Time, error) {
	if date == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if clock != "" {
		return schedule.ParseInstant(date + "T" + clock)
	}
	return schedule.ParseInstant(date)
}

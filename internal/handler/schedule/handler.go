package schedule

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MedCore-Microservices/clinic-api/internal/model"
	"github.com/MedCore-Microservices/clinic-api/internal/service/schedule"
	apperrors "github.com/MedCore-Microservices/clinic-api/pkg/errors"
	"github.com/MedCore-Microservices/clinic-api/pkg/httputil"
)

// Availability defaults to the next seven days when no range is given.
const defaultAvailabilityDays = 7

type Handler struct {
	service *schedule.Service
}

func NewHandler(service *schedule.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the schedule routes. Availability is readable by
// any authenticated caller; configure and block require the staffOnly
// middleware when one is given.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, staffOnly ...gin.HandlerFunc) {
	doctors := r.Group("/doctors/:id/schedule")
	{
		doctors.GET("", h.GetAvailability)

		writes := doctors.Group("")
		writes.Use(staffOnly...)
		writes.POST("", h.ConfigureSchedule)
		writes.PATCH("/block", h.BlockRange)
	}
}

func (h *Handler) ConfigureSchedule(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput("invalid doctor ID", err))
		return
	}

	var req model.ConfigureScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput(err.Error(), err))
		return
	}

	result, err := h.service.ConfigureSchedule(c.Request.Context(), doctorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, result)
}

func (h *Handler) BlockRange(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput("invalid doctor ID", err))
		return
	}

	var req model.BlockScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput(err.Error(), err))
		return
	}

	result, err := h.service.BlockRange(c.Request.Context(), doctorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) GetAvailability(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput("invalid doctor ID", err))
		return
	}

	from, to, err := availabilityWindow(c.Query("from"), c.Query("to"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.InvalidInput(err.Error(), err))
		return
	}

	slots, err := h.service.GetAvailability(c.Request.Context(), doctorID, from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, slots)
}

func availabilityWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	now := time.Now()
	from := schedule.StartOfDay(now)
	to := from.AddDate(0, 0, defaultAvailabilityDays)

	if fromStr != "" {
		parsed, err := schedule.ParseInstant(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
		to = from.AddDate(0, 0, defaultAvailabilityDays)
	}
	if toStr != "" {
		parsed, err := schedule.ParseInstant(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}

package handler

import (
	"errors"
	"net/http"
	"time"

	"fleet-tracker/internal/tracking/model"
	"fleet-tracker/internal/tracking/service"
	apperrors "fleet-tracker/pkg/errors"
	"fleet-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TrackingHandler struct {
	service *service.TrackingService
}

func NewTrackingHandler(svc *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{service: svc}
}

func (h *TrackingHandler) RegisterRoutes(router *gin.RouterGroup) {
	tracking := router.Group("/orgs/:orgID/tracking")
	{
		tracking.GET("/units", h.ListUnits)
		tracking.GET("/summary", h.GetSummary)
		tracking.POST("/refresh", h.ForceRefresh)
	}
}

type listUnitsQuery struct {
	Query     string `form:"q"`
	Substatus string `form:"substatus" binding:"omitempty,oneof=IN_TRANSIT AT_DESTINATION DELIVERED"`
	Refresh   bool   `form:"refresh"`
}

type unitListResponse struct {
	Units   []model.TrackingUnit  `json:"units"`
	Summary model.TrackingSummary `json:"summary"`
}

// ListUnits returns the reconciled tracking units for an organization,
// running a pass when none is cached (or when refresh=true). Counts and
// totals are per-device: a fully paired fleet set appears twice, once for
// the tractor's device and once for the trailer's.
func (h *TrackingHandler) ListUnits(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgID"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid organization ID")
		return
	}

	var query listUnitsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	units, err := h.service.Refresh(c.Request.Context(), orgID, query.Refresh)
	if err != nil {
		// The previous snapshot, if any, stays serveable.
		stale, ok := h.service.Units(orgID)
		if !ok {
			respondRefreshError(c, err)
			return
		}
		units = stale
	}

	filtered := h.service.Search(units, utils.SanitizeQuery(query.Query), model.ExecutionSubstatus(query.Substatus))
	filtered = extrapolateAges(filtered, time.Now())

	utils.SuccessResponse(c, http.StatusOK, "Tracking units retrieved successfully", unitListResponse{
		Units:   filtered,
		Summary: h.service.Summarize(filtered),
	})
}

func (h *TrackingHandler) GetSummary(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgID"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid organization ID")
		return
	}

	units, err := h.service.Refresh(c.Request.Context(), orgID, false)
	if err != nil {
		stale, ok := h.service.Units(orgID)
		if !ok {
			respondRefreshError(c, err)
			return
		}
		units = stale
	}

	utils.SuccessResponse(c, http.StatusOK, "Tracking summary retrieved successfully", h.service.Summarize(units))
}

// ForceRefresh runs a full reconciliation pass bypassing the cache.
func (h *TrackingHandler) ForceRefresh(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgID"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid organization ID")
		return
	}

	units, err := h.service.Refresh(c.Request.Context(), orgID, true)
	if err != nil {
		respondRefreshError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Tracking snapshot refreshed", unitListResponse{
		Units:   units,
		Summary: h.service.Summarize(units),
	})
}

// respondRefreshError maps a failed reconciliation pass with no serveable
// snapshot. Repository failures arrive as AppErrors carrying a query code.
func respondRefreshError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrOrganizationRequired) {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		utils.ErrorResponse(c, http.StatusBadGateway, appErr.Message)
		return
	}

	utils.ErrorResponse(c, http.StatusBadGateway, apperrors.ErrSnapshotNotLoaded.Error())
}

// extrapolateAges re-seeds each unit's signal age to serve time, so a cached
// snapshot still reports a current "seconds since last signal" without a
// refetch. The stored snapshot is never touched; units are copied.
func extrapolateAges(units []model.TrackingUnit, now time.Time) []model.TrackingUnit {
	out := make([]model.TrackingUnit, len(units))
	copy(out, units)

	nowMs := now.UnixMilli()
	for i := range out {
		out[i].SignalAgeSec = service.ExtrapolateAge(out[i].SignalAgeSec, out[i].SignalAgeCapturedAtMs, now)
		out[i].SignalAgeCapturedAtMs = nowMs
	}

	return out
}

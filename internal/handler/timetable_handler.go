package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type timetableService interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest, actor string) (*dto.GenerateTimetableResponse, error)
	Preview(ctx context.Context, req dto.GenerateTimetableRequest, actor string) (*dto.GenerateTimetableResponse, error)
	Commit(ctx context.Context, req dto.CommitProposalRequest, actor string) (*dto.GenerateTimetableResponse, error)
	Get(ctx context.Context, semester, batch string) (*dto.TimetableResponse, error)
	List(ctx context.Context, semester string) ([]models.TimetableSummary, error)
	Hours(credits int, category string) dto.HoursResponse
}

// TimetableHandler exposes timetable generation and read endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc timetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate and store weekly timetables
// @Description Runs the scheduler for every batch and replaces the stored timetables of the semester.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate timetable payload"
// @Success 201 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	req, ok := bindGenerate(c)
	if !ok {
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result, runMeta(result))
}

// Preview godoc
// @Summary Preview weekly timetables without storing them
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generate timetable payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/preview [post]
func (h *TimetableHandler) Preview(c *gin.Context) {
	req, ok := bindGenerate(c)
	if !ok {
		return
	}
	result, err := h.service.Preview(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := runMeta(result)
	meta["mode"] = "preview"
	response.JSON(c, http.StatusOK, result, meta)
}

// Commit godoc
// @Summary Store a previewed timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.CommitProposalRequest true "Proposal to commit"
// @Success 201 {object} response.Envelope
// @Router /timetables/commit [post]
func (h *TimetableHandler) Commit(c *gin.Context) {
	var req dto.CommitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid commit payload"))
		return
	}
	result, err := h.service.Commit(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result, runMeta(result))
}

// List godoc
// @Summary List stored batch timetables of a semester
// @Tags Timetables
// @Produce json
// @Param semester path string true "Semester"
// @Success 200 {object} response.Envelope
// @Router /timetables/{semester} [get]
func (h *TimetableHandler) List(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), c.Param("semester"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"total": len(result)})
}

// Get godoc
// @Summary Get the stored timetable of one batch
// @Tags Timetables
// @Produce json
// @Param semester path string true "Semester"
// @Param batch path string true "Batch"
// @Success 200 {object} response.Envelope
// @Router /timetables/{semester}/{batch} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	result, err := h.service.Get(c.Request.Context(), c.Param("semester"), c.Param("batch"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Hours godoc
// @Summary Resolve weekly session counts for a course
// @Tags Timetables
// @Produce json
// @Param credits query int true "Credits"
// @Param category query string true "Category (Theory, Lab, LabIntegrated)"
// @Success 200 {object} response.Envelope
// @Router /timetables/hours [get]
func (h *TimetableHandler) Hours(c *gin.Context) {
	credits, err := strconv.Atoi(c.Query("credits"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "credits must be an integer"))
		return
	}
	category := c.Query("category")
	if category == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "category is required"))
		return
	}
	response.JSON(c, http.StatusOK, h.service.Hours(credits, category))
}

func bindGenerate(c *gin.Context) (dto.GenerateTimetableRequest, bool) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return req, false
	}
	return req, true
}

func runMeta(result *dto.GenerateTimetableResponse) map[string]interface{} {
	return map[string]interface{}{
		"run_id":      result.RunID,
		"unscheduled": len(result.Unscheduled),
		"warnings":    len(result.Warnings),
	}
}

func actorID(c *gin.Context) string {
	if claims := middleware.Claims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

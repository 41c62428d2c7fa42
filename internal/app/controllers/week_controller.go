package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
)

// WeekController handles course-week endpoints
type WeekController struct {
	weekService      services.WeekService
	cascadeService   services.CascadeService
	reconcileService services.ReconcileService
}

// NewWeekController creates a new WeekController
func NewWeekController(weekService services.WeekService, cascadeService services.CascadeService, reconcileService services.ReconcileService) *WeekController {
	return &WeekController{
		weekService:      weekService,
		cascadeService:   cascadeService,
		reconcileService: reconcileService,
	}
}

// ListWeeks returns weeks matching the filters
// @Summary List weeks
// @Tags course-week
// @Produce json
// @Param courseId query string false "Course business key"
// @Param weekId query int false "Week number"
// @Success 200 {object} dto.APIResponse{data=[]models.Week} "Weeks"
// @Failure 400 {object} dto.APIResponse "Invalid weekId"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /course-week [get]
func (c *WeekController) ListWeeks(ctx *gin.Context) {
	filter := models.WeekFilter{CourseID: queryString(ctx, "courseId")}
	weekID, ok, err := queryWeekID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if ok {
		filter.WeekID = &weekID
	}

	weeks, err := c.weekService.ListWeeks(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, weeks, "")
}

// CreateWeek handles week creation
// @Summary Create a week
// @Tags course-week
// @Accept json
// @Produce json
// @Param request body dto.CreateWeekRequest true "Week"
// @Success 201 {object} dto.APIResponse{data=models.Week} "Week created"
// @Failure 400 {object} dto.APIResponse "Missing or invalid field"
// @Failure 409 {object} dto.APIResponse "Week already exists"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /course-week [post]
func (c *WeekController) CreateWeek(ctx *gin.Context) {
	var req dto.CreateWeekRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	week, err := c.weekService.CreateWeek(ctx.Request.Context(), req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, week, "Week created")
}

// UpdateWeek applies a partial update
// @Summary Update a week
// @Tags course-week
// @Accept json
// @Produce json
// @Param courseId query string true "Course business key"
// @Param weekId query int true "Week number"
// @Param request body object true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Week} "Week updated"
// @Failure 400 {object} dto.APIResponse "Missing or invalid field"
// @Failure 404 {object} dto.APIResponse "Week not found"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /course-week [patch]
func (c *WeekController) UpdateWeek(ctx *gin.Context) {
	courseID, weekID, err := weekKey(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	body, err := patchBody(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	patch, err := dto.WeekPatchFromBody(courseID, weekID, body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	week, err := c.weekService.UpdateWeek(ctx.Request.Context(), courseID, weekID, patch)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, week, "Week updated")
}

// DeleteWeek removes one week document
// @Summary Delete a week
// @Description Deletes the week only; its lessons are kept.
// @Tags course-week
// @Produce json
// @Param courseId query string true "Course business key"
// @Param weekId query int true "Week number"
// @Success 200 {object} dto.APIResponse{data=models.Week} "Deleted week"
// @Failure 400 {object} dto.APIResponse "Missing key"
// @Failure 404 {object} dto.APIResponse "Week not found"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /course-week [delete]
func (c *WeekController) DeleteWeek(ctx *gin.Context) {
	courseID, weekID, err := weekKey(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	week, err := c.weekService.DeleteWeek(ctx.Request.Context(), courseID, weekID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, week, "Week deleted")
}

// DeleteWeekTree removes a week and its lessons
// @Summary Delete a week tree
// @Tags course-week
// @Produce json
// @Param courseId query string true "Course business key"
// @Param weekId query int true "Week number"
// @Success 200 {object} dto.APIResponse{data=services.CascadeReport} "Cascade report"
// @Failure 400 {object} dto.APIResponse "Missing key"
// @Failure 404 {object} dto.APIResponse "Week not found"
// @Failure 500 {object} dto.APIResponse "Cascade incomplete"
// @Router /course-week/tree [delete]
func (c *WeekController) DeleteWeekTree(ctx *gin.Context) {
	courseID, weekID, err := weekKey(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	report, err := c.cascadeService.DeleteWeekTree(ctx.Request.Context(), courseID, weekID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, report, "Week tree deleted")
}

// ReconcileWeek recomputes lessonCount and lessonList
// @Summary Reconcile week counters
// @Tags course-week
// @Produce json
// @Param courseId query string true "Course business key"
// @Param weekId query int true "Week number"
// @Success 200 {object} dto.APIResponse{data=models.Week} "Reconciled week"
// @Failure 404 {object} dto.APIResponse "Week not found"
// @Router /course-week/reconcile [post]
func (c *WeekController) ReconcileWeek(ctx *gin.Context) {
	courseID, weekID, err := weekKey(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	week, err := c.reconcileService.ReconcileWeek(ctx.Request.Context(), courseID, weekID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, week, "Week reconciled")
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

// LessonController handles lesson-content endpoints
type LessonController struct {
	lessonService services.LessonService
}

// NewLessonController creates a new LessonController
func NewLessonController(lessonService services.LessonService) *LessonController {
	return &LessonController{lessonService: lessonService}
}

// lessonKey reads the required (courseId, weekId, lessonId) triple
func lessonKey(ctx *gin.Context) (models.LessonKey, error) {
	courseID, weekID, err := weekKey(ctx)
	if err != nil {
		return models.LessonKey{}, err
	}
	lessonID, err := requireQuery(ctx, "lessonId")
	if err != nil {
		return models.LessonKey{}, err
	}
	return models.LessonKey{CourseID: courseID, WeekID: weekID, LessonID: lessonID}, nil
}

// ListLessons returns lessons matching the filters
// @Summary List lessons
// @Tags lesson-content
// @Produce json
// @Param courseId query string false "Course business key"
// @Param weekId query int false "Week number"
// @Param lessonId query string false "Lesson business key"
// @Param slug query string false "Lesson slug"
// @Success 200 {object} dto.APIResponse{data=[]models.Lesson} "Lessons"
// @Failure 400 {object} dto.APIResponse "Invalid weekId"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /lesson-content [get]
func (c *LessonController) ListLessons(ctx *gin.Context) {
	filter, err := lessonFilter(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	lessons, err := c.lessonService.ListLessons(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, lessons, "")
}

// CreateLesson handles lesson creation
// @Summary Create a lesson
// @Description Creates a lesson. Either title or name is required and both are stored. lessonId and slug must be unique within the week.
// @Tags lesson-content
// @Accept json
// @Produce json
// @Param request body dto.CreateLessonRequest true "Lesson"
// @Success 201 {object} dto.APIResponse{data=models.Lesson} "Lesson created"
// @Failure 400 {object} dto.APIResponse "Missing or invalid field"
// @Failure 409 {object} dto.APIResponse "lessonId or slug taken"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /lesson-content [post]
func (c *LessonController) CreateLesson(ctx *gin.Context) {
	var req dto.CreateLessonRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	lesson, err := c.lessonService.CreateLesson(ctx.Request.Context(), req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, lesson, "Lesson created")
}

// UpdateLesson applies a partial update, optionally renaming the lesson
// @Summary Update a lesson
// @Description Applies the fields present in the body. Setting title or name sets both. When oldLessonId is given (query or body) it addresses the lesson and lessonId becomes its new id; otherwise a body lessonId renames the lesson addressed by the query lessonId.
// @Tags lesson-content
// @Accept json
// @Produce json
// @Param courseId query string true "Course business key"
// @Param weekId query int true "Week number"
// @Param lessonId query string false "Lesson business key"
// @Param oldLessonId query string false "Current lessonId when renaming"
// @Param request body object true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Lesson} "Lesson updated"
// @Failure 400 {object} dto.APIResponse "Missing or invalid field"
// @Failure 404 {object} dto.APIResponse "Lesson not found"
// @Failure 409 {object} dto.APIResponse "New lessonId or slug taken"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /lesson-content [patch]
func (c *LessonController) UpdateLesson(ctx *gin.Context) {
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
	patch, bodyOld, err := dto.LessonPatchFromBody(courseID, weekID, body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	queryLessonID := queryString(ctx, "lessonId")
	oldLessonID := queryString(ctx, "oldLessonId")
	if oldLessonID == "" {
		oldLessonID = bodyOld
	}

	key := models.LessonKey{CourseID: courseID, WeekID: weekID, LessonID: queryLessonID}
	if oldLessonID != "" {
		key.LessonID = oldLessonID
		if patch.LessonID == nil && queryLessonID != "" && queryLessonID != oldLessonID {
			patch.LessonID = &queryLessonID
		}
	}
	if key.LessonID == "" {
		middleware.HandleAPIError(ctx, apperrors.NewMissingFieldError("lessonId"))
		return
	}

	lesson, err := c.lessonService.UpdateLesson(ctx.Request.Context(), key, patch)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, lesson, "Lesson updated")
}

// DeleteLesson removes one lesson
// @Summary Delete a lesson
// @Tags lesson-content
// @Produce json
// @Param courseId query string true "Course business key"
// @Param weekId query int true "Week number"
// @Param lessonId query string true "Lesson business key"
// @Success 200 {object} dto.APIResponse{data=models.Lesson} "Deleted lesson"
// @Failure 400 {object} dto.APIResponse "Missing key"
// @Failure 404 {object} dto.APIResponse "Lesson not found"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /lesson-content [delete]
func (c *LessonController) DeleteLesson(ctx *gin.Context) {
	key, err := lessonKey(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	lesson, err := c.lessonService.DeleteLesson(ctx.Request.Context(), key)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, lesson, "Lesson deleted")
}

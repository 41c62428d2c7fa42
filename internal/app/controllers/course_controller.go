package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/app/services"
	"github.com/yigit/academy/internal/middleware"
)

// CourseController handles course endpoints
type CourseController struct {
	courseService    services.CourseService
	cascadeService   services.CascadeService
	reconcileService services.ReconcileService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService, cascadeService services.CascadeService, reconcileService services.ReconcileService) *CourseController {
	return &CourseController{
		courseService:    courseService,
		cascadeService:   cascadeService,
		reconcileService: reconcileService,
	}
}

// ListCourses returns every course matching the filters
// @Summary List courses
// @Description Returns all courses, optionally filtered by courseId or slug. An empty list is not an error.
// @Tags courses
// @Produce json
// @Param courseId query string false "Course business key"
// @Param slug query string false "Course slug"
// @Success 200 {object} dto.APIResponse{data=[]models.Course} "Courses"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.courseService.ListCourses(ctx.Request.Context(), models.CourseFilter{
		CourseID: queryString(ctx, "courseId"),
		Slug:     queryString(ctx, "slug"),
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, courses, "")
}

// CreateCourse handles course creation
// @Summary Create a course
// @Description Creates a course. courseId, title and slug are required; courseId must be unique.
// @Tags courses
// @Accept json
// @Produce json
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=models.Course} "Course created"
// @Failure 400 {object} dto.APIResponse "Missing or invalid field"
// @Failure 409 {object} dto.APIResponse "courseId already exists"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.CreateCourse(ctx.Request.Context(), req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, course, "Course created")
}

// UpdateCourse applies a partial update
// @Summary Update a course
// @Description Applies the fields present in the body to the course addressed by courseId. updatedAt is always refreshed.
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId query string true "Course business key"
// @Param request body object true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course updated"
// @Failure 400 {object} dto.APIResponse "Missing or invalid field"
// @Failure 404 {object} dto.APIResponse "Course not found"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /courses [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	courseID, err := requireQuery(ctx, "courseId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	body, err := patchBody(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	patch, err := dto.CoursePatchFromBody(courseID, body)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	course, err := c.courseService.UpdateCourse(ctx.Request.Context(), courseID, patch)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, course, "Course updated")
}

// DeleteCourse removes one course document
// @Summary Delete a course
// @Description Deletes the course only. Its weeks and lessons are kept; use /courses/tree to remove them too.
// @Tags courses
// @Produce json
// @Param courseId query string true "Course business key"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Deleted course"
// @Failure 400 {object} dto.APIResponse "courseId missing"
// @Failure 404 {object} dto.APIResponse "Course not found"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /courses [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	courseID, err := requireQuery(ctx, "courseId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	course, err := c.courseService.DeleteCourse(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, course, "Course deleted")
}

// DeleteCourseTree removes a course with its weeks and lessons
// @Summary Delete a course tree
// @Description Deletes the course's lessons, then weeks, then the course. Runs in one transaction when the store supports it; otherwise a failure returns the partial report under error.details.report.
// @Tags courses
// @Produce json
// @Param courseId query string true "Course business key"
// @Success 200 {object} dto.APIResponse{data=services.CascadeReport} "Cascade report"
// @Failure 400 {object} dto.APIResponse "courseId missing"
// @Failure 404 {object} dto.APIResponse "Course not found"
// @Failure 500 {object} dto.APIResponse "Cascade incomplete"
// @Router /courses/tree [delete]
func (c *CourseController) DeleteCourseTree(ctx *gin.Context) {
	courseID, err := requireQuery(ctx, "courseId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	report, err := c.cascadeService.DeleteCourseTree(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, report, "Course tree deleted")
}

// ReconcileCourse recomputes the stored counters of a course
// @Summary Reconcile course counters
// @Description Recomputes weekCount and each week's lessonCount and lessonList from the stored children.
// @Tags courses
// @Produce json
// @Param courseId query string true "Course business key"
// @Success 200 {object} dto.APIResponse{data=services.ReconcileReport} "Reconcile report"
// @Failure 400 {object} dto.APIResponse "courseId missing"
// @Failure 404 {object} dto.APIResponse "Course not found"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /courses/reconcile [post]
func (c *CourseController) ReconcileCourse(ctx *gin.Context) {
	courseID, err := requireQuery(ctx, "courseId")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	report, err := c.reconcileService.ReconcileCourse(ctx.Request.Context(), courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, report, "Course reconciled")
}

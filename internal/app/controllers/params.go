package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yigit/academy/internal/app/models"
	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/pkg/apperrors"
)

// maxPatchBody bounds PATCH/PUT bodies; lesson content is the largest field
const maxPatchBody = 4 << 20

// queryString returns the trimmed query value
func queryString(ctx *gin.Context, key string) string {
	return strings.TrimSpace(ctx.Query(key))
}

// queryWeekID parses weekId. ok is false when the parameter is absent.
func queryWeekID(ctx *gin.Context) (weekID int, ok bool, err error) {
	raw := queryString(ctx, "weekId")
	if raw == "" {
		return 0, false, nil
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil || n < 1 {
		return 0, true, apperrors.NewValidationError("weekId", "weekId must be a positive integer")
	}
	return n, true, nil
}

// requireQuery returns the value or a missing-field error
func requireQuery(ctx *gin.Context, key string) (string, error) {
	v := queryString(ctx, key)
	if v == "" {
		return "", apperrors.NewMissingFieldError(key)
	}
	return v, nil
}

// weekKey reads the required (courseId, weekId) pair
func weekKey(ctx *gin.Context) (string, int, error) {
	courseID, err := requireQuery(ctx, "courseId")
	if err != nil {
		return "", 0, err
	}
	weekID, ok, err := queryWeekID(ctx)
	if err != nil {
		return "", 0, err
	}
	if !ok {
		return "", 0, apperrors.NewMissingFieldError("weekId")
	}
	return courseID, weekID, nil
}

// lessonFilter reads the optional lesson filters
func lessonFilter(ctx *gin.Context) (models.LessonFilter, error) {
	f := models.LessonFilter{
		CourseID: queryString(ctx, "courseId"),
		LessonID: queryString(ctx, "lessonId"),
		Slug:     queryString(ctx, "slug"),
	}
	weekID, ok, err := queryWeekID(ctx)
	if err != nil {
		return f, err
	}
	if ok {
		f.WeekID = &weekID
	}
	return f, nil
}

// patchBody reads the request body as a JSON object
func patchBody(ctx *gin.Context) (dto.PatchBody, error) {
	data, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxPatchBody))
	if err != nil {
		return nil, apperrors.NewValidationError("body", "request body is too large")
	}
	return dto.ParsePatchBody(data)
}

// respond writes the success envelope
func respond(ctx *gin.Context, status int, data interface{}, message string) {
	ctx.JSON(status, dto.NewSuccessResponse(data, message))
}

package controllers

import (
	"errors"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/middleware"
	"github.com/yigit/academy/internal/pkg/apperrors"
	"github.com/yigit/academy/internal/pkg/filestorage"
)

// UploadController stores lesson assets
type UploadController struct {
	storage filestorage.FileStorage
}

// NewUploadController creates a new UploadController
func NewUploadController(storage filestorage.FileStorage) *UploadController {
	return &UploadController{storage: storage}
}

// Upload stores one file for a course or week
// @Summary Upload a lesson asset
// @Description Stores an image or document under the course (and week) folder. The response can be used directly as a lesson attachment or image URL.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param file formData file true "File"
// @Param courseId formData string true "Course business key"
// @Param weekId formData int false "Week number"
// @Success 201 {object} dto.APIResponse{data=dto.UploadResponse} "Stored file"
// @Failure 400 {object} dto.APIResponse "Missing file, unsupported type or file too large"
// @Failure 401 {object} dto.APIResponse "Not signed in"
// @Failure 500 {object} dto.APIResponse "Internal error"
// @Router /uploads [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewMissingFieldError("file"))
		return
	}
	courseID := ctx.PostForm("courseId")
	if courseID == "" {
		middleware.HandleAPIError(ctx, apperrors.NewMissingFieldError("courseId"))
		return
	}
	subPath := courseID
	if weekID := ctx.PostForm("weekId"); weekID != "" {
		subPath = path.Join(courseID, weekID)
	}

	asset, err := c.storage.Save(file, subPath)
	if err != nil {
		middleware.HandleAPIError(ctx, uploadError(err))
		return
	}
	respond(ctx, http.StatusCreated, dto.UploadResponse{
		URL:  asset.URL,
		Name: asset.Name,
		Type: asset.Type,
		Size: asset.Size,
	}, "File uploaded")
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, filestorage.ErrUnsupportedType):
		return apperrors.NewValidationError("file", "unsupported file type")
	case errors.Is(err, filestorage.ErrFileTooLarge):
		return apperrors.NewValidationError("file", "file too large")
	case errors.Is(err, filestorage.ErrInvalidPath):
		return apperrors.NewValidationError("courseId", "invalid upload folder")
	default:
		return apperrors.NewStoreError("save upload", err)
	}
}

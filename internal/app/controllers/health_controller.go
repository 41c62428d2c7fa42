package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/academy/internal/app/models/dto"
	"github.com/yigit/academy/internal/middleware"
	"github.com/yigit/academy/internal/pkg/logger"
)

const healthTimeout = 2 * time.Second

// HealthStatus is the body of /healthz
type HealthStatus struct {
	Status string `json:"status" example:"ok"`
	Driver string `json:"driver" example:"mongo"`
}

// Health reports whether the store answers
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=controllers.HealthStatus} "Store reachable"
// @Failure 503 {object} dto.APIResponse{data=controllers.HealthStatus} "Store unreachable"
// @Router /healthz [get]
func Health(ctx *gin.Context) {
	repos, ok := middleware.StoreFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusServiceUnavailable, dto.APIResponse{Data: HealthStatus{Status: "no store"}})
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
	defer cancel()
	if err := repos.Pinger.Ping(pingCtx); err != nil {
		logger.Warn().Err(err).Str("driver", repos.Driver).Msg("Health check failed")
		ctx.JSON(http.StatusServiceUnavailable, dto.APIResponse{
			Data:    HealthStatus{Status: "unavailable", Driver: repos.Driver},
			Message: "store unavailable",
		})
		return
	}
	respond(ctx, http.StatusOK, HealthStatus{Status: "ok", Driver: repos.Driver}, "")
}

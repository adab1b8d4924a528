package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
)

// Handlers contains the system HTTP handlers of the sticker certifier API
type Handlers struct {
	repository    domain.PackRepository
	cache         domain.CacheManager
	healthChecker domain.HealthChecker
	startTime     time.Time
}

// NewHandlers creates a new instance of system handlers
func NewHandlers(repository domain.PackRepository, cache domain.CacheManager, healthChecker domain.HealthChecker) *Handlers {
	return &Handlers{
		repository:    repository,
		cache:         cache,
		healthChecker: healthChecker,
		startTime:     time.Now(),
	}
}

// ErrorResponse represents the standard error response format
// @Description Standard error response format
type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Code    string `json:"code" example:"PACK_INVALID"`
	Message string `json:"message" example:"sticker height should be 512, current height is 511"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse represents the standard success response format
// @Description Standard success response format
type SuccessResponse struct {
	Status string `json:"status" example:"success"`
	Data   any    `json:"data"`
}

// FailureDetails locates a manifest or pack failure
// @Description Location of a manifest or pack failure
type FailureDetails struct {
	PackIdentifier string `json:"pack_identifier,omitempty" example:"cats"`
	FileName       string `json:"file_name,omitempty" example:"01.webp"`
	Cause          string `json:"cause,omitempty" example:"asset not found"`
}

// HealthResponse represents the health check response
// @Description Health check response
type HealthResponse struct {
	Status     string                         `json:"status" example:"healthy"`
	Timestamp  string                         `json:"timestamp" example:"2024-01-01T12:00:00Z"`
	Components map[string]domain.HealthStatus `json:"components"`
	Uptime     string                         `json:"uptime" example:"1h2m3s"`
}

// MetricsResponse represents the metrics response
// @Description System metrics response
type MetricsResponse struct {
	Cache   domain.CacheStats `json:"cache"`
	Catalog map[string]any    `json:"catalog"`
	Uptime  struct {
		Seconds   float64 `json:"seconds" example:"3600"`
		Timestamp string  `json:"timestamp" example:"2024-01-01T12:00:00Z"`
	} `json:"uptime"`
}

// HealthHandler handles GET /health requests
// @Summary      Health check
// @Description  Returns the health of the catalog and the asset cache
// @Tags         System
// @Produce      json
// @Success      200 {object} HealthResponse "Service is healthy"
// @Failure      503 {object} HealthResponse "Service is degraded or unhealthy"
// @Router       /health [get]
func (h *Handlers) HealthHandler(c *fiber.Ctx) error {
	health := h.healthChecker.CheckHealth(c.Context())

	status := fiber.StatusOK
	if health.Status != domain.HealthStatusHealthy {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(HealthResponse{
		Status:     health.Status,
		Timestamp:  health.Timestamp.Format(time.RFC3339),
		Components: health.Components,
		Uptime:     health.Uptime.Round(time.Second).String(),
	})
}

// MetricsHandler handles GET /metrics requests
// @Summary      System metrics
// @Description  Returns asset cache statistics and catalog counters
// @Tags         System
// @Produce      json
// @Success      200 {object} SuccessResponse{data=MetricsResponse} "Successfully retrieved metrics"
// @Router       /metrics [get]
func (h *Handlers) MetricsHandler(c *fiber.Ctx) error {
	var metrics MetricsResponse
	metrics.Cache = h.cache.Stats()
	metrics.Catalog = h.repository.GetStats(c.Context())
	metrics.Uptime.Seconds = time.Since(h.startTime).Seconds()
	metrics.Uptime.Timestamp = time.Now().UTC().Format(time.RFC3339)

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data:   metrics,
	})
}

// toAppError maps a certification or catalog error to its HTTP form
func toAppError(err error) *domain.AppError {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		// the catalog wraps certification failures; report them by their reason
		var structErr *domain.StructuralError
		var valErr *domain.ValidationError
		switch {
		case errors.As(appErr.Cause, &structErr):
			return structuralAppError(structErr)
		case errors.As(appErr.Cause, &valErr):
			return validationAppError(valErr)
		}
		return appErr
	}

	var structErr *domain.StructuralError
	if errors.As(err, &structErr) {
		return structuralAppError(structErr)
	}

	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return validationAppError(valErr)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.NewAppErrorWithCause(domain.ErrTimeout, "Request timed out", fiber.StatusRequestTimeout, err, nil)
	}

	return domain.NewAppErrorWithCause(domain.ErrInternal, "Internal Server Error", fiber.StatusInternalServerError, err, nil)
}

func structuralAppError(err *domain.StructuralError) *domain.AppError {
	return domain.NewAppErrorWithCause(
		domain.ErrManifestInvalid,
		err.Reason,
		fiber.StatusBadRequest,
		err,
		failureDetails(err.PackIdentifier, err.FileName, err.Cause),
	)
}

func validationAppError(err *domain.ValidationError) *domain.AppError {
	return domain.NewAppErrorWithCause(
		domain.ErrPackInvalid,
		err.Reason,
		fiber.StatusUnprocessableEntity,
		err,
		failureDetails(err.PackIdentifier, err.FileName, err.Cause),
	)
}

func failureDetails(identifier, fileName string, cause error) FailureDetails {
	details := FailureDetails{PackIdentifier: identifier, FileName: fileName}
	if cause != nil {
		details.Cause = cause.Error()
	}
	return details
}

// sendError sends a standardized error response
func sendError(c *fiber.Ctx, appErr *domain.AppError) error {
	if appErr.StatusCode >= fiber.StatusInternalServerError {
		log.Error().
			Err(appErr).
			Str("request_id", getRequestID(c)).
			Str("operation", appErr.Operation).
			Msg("Request failed")
	}

	return c.Status(appErr.StatusCode).JSON(ErrorResponse{
		Status:  "error",
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// getRequestID extracts the request ID from context
func getRequestID(c *fiber.Ctx) string {
	if rid, ok := c.Locals("requestid").(string); ok {
		return rid
	}
	return ""
}

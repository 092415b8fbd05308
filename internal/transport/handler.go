// Package transport exposes the grading service over HTTP.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-omr-grader/internal/config"
	apperrors "go-omr-grader/internal/errors"
	"go-omr-grader/internal/logger"
	"go-omr-grader/internal/service"
	"go-omr-grader/pkg/models"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHandler builds the HTTP router for the grading service
func NewHandler(grading service.GradingService, cfg *config.Config) http.Handler {
	r := gin.Default()

	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)

	v1 := r.Group("/v1")
	{
		v1.POST("/grade", gradeSheet(grading, cfg))
		v1.POST("/grade/batch", gradeBatch(grading, cfg))
		v1.GET("/results/:id", getResult(grading))
		v1.GET("/batches/:id", getBatch(grading))
	}

	return r
}

func gradeSheet(grading service.GradingService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
			"ip":         c.ClientIP(),
		}).Info("Processing sheet grading request")

		var req models.GradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Invalid request format")
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		response, err := grading.GradeSheet(ctx, req)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to grade sheet", err)
			return
		}

		fields := logrus.Fields{
			"url":                req.ImageURL,
			"result_id":          response.ResultID,
			"status":             response.Result.Status,
			"detected_set":       response.Result.DetectedSet,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}
		if response.Result.Evaluation != nil {
			fields["score"] = response.Result.Evaluation.TotalScore
		}
		logger.WithFields(fields).Info("Sheet grading completed")

		c.JSON(http.StatusOK, response)
	}
}

func gradeBatch(grading service.GradingService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.BatchGradeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		batch, err := grading.GradeBatch(ctx, req)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to grade batch", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"session":   batch.SessionID,
			"sheets":    batch.Statistics.TotalSheets,
			"succeeded": batch.Statistics.Succeeded,
			"failed":    batch.Statistics.Failed,
		}).Info("Batch grading completed")

		c.JSON(http.StatusOK, batch)
	}
}

func getResult(grading service.GradingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := grading.GetResult(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, determineStatusCode(err), "result lookup failed", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getBatch(grading service.GradingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		batch, err := grading.GetBatch(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, determineStatusCode(err), "batch lookup failed", err)
			return
		}
		c.JSON(http.StatusOK, batch)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}

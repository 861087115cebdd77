package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pfrederiksen/filgoal/internal/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDKey, id)
		c.Set(requestIDHeader, id)
		return c.Next()
	}
}

func requestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

func accessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		logger.IncrCounter("http.requests")
		logger.RecordTiming("http.request", elapsed)
		logger.Info("request", logger.Fields{
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": elapsed.Milliseconds(),
			"request_id":  requestIDFrom(c),
		})
		return err
	}
}

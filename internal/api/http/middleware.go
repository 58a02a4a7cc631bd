package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nikobathrooms/niko-auth-gateway/internal/observability"
	apperrors "github.com/nikobathrooms/niko-auth-gateway/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware converts every failure path, panics included,
// into the {success:false, error:{...}} envelope the forms render. No exit
// path leaves the caller without a well-formed response.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				var fiberErr *fiber.Error
				if e, ok := err.(*fiber.Error); ok {
					fiberErr = e
				}

				domainErr := apperrors.ToDomainError(err)
				status := domainErr.HTTPStatus
				code := domainErr.Code
				message := domainErr.Message
				if fiberErr != nil {
					status = fiberErr.Code
					code = "REQUEST_FAILED"
					message = fiberErr.Message
				}

				metrics.RecordError(c.Path(), c.Method(), code)

				errBody := fiber.Map{
					"code":    code,
					"message": message,
				}
				if fiberErr == nil && len(domainErr.Details) > 0 {
					errBody["details"] = domainErr.Details
				}
				if status >= 500 {
					logger.Error("request failed", zap.Error(err))
				}
				c.Status(status)
				_ = c.JSON(fiber.Map{"success": false, "error": errBody})
				err = nil
			}
		}()
		return c.Next()
	}
}

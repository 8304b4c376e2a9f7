package serverutils

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware recovers panics and converts unhandled errors into
// the standard JSON envelope. Controllers map their own domain errors; this
// is the last line of defense.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] %s %s: %v", ctx.Method(), ctx.Path(), r)
				_ = ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"code":    500,
					"message": "Internal server error",
				})
			}
		}()

		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		if fe, ok := err.(*fiber.Error); ok {
			code = fe.Code
		}
		return ctx.Status(code).JSON(fiber.Map{
			"success": false,
			"code":    code,
			"message": err.Error(),
		})
	}
}

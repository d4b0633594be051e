package echoapi

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core"
)

// intParamsMiddleware parses the `names` path params as positive integers and stores them in the context.
func intParamsMiddleware(names ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			for _, name := range names {
				val, err := strconv.Atoi(ctx.Param(name))
				if err != nil || val <= 0 {
					return core.NewValidationError(nil, core.FieldError{
						Field: name,
						Error: fmt.Sprintf("invalid %s: %q", name, ctx.Param(name)),
					})
				}
				ctx.Set(name, val)
			}
			return next(ctx)
		}
	}
}

func intParam(ctx echo.Context, name string) int {
	val, _ := ctx.Get(name).(int)
	return val
}

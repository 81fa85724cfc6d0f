package helper

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/whitekid/goxp/log"
)

// StartEcho start echo and shutdown it when ctx is done
func StartEcho(ctx context.Context, e *Echo, addr string) error {
	go func() {
		<-ctx.Done()
		if err := e.Shutdown(context.Background()); err != nil {
			log.Errorf("shutdown failed: %v", err)
		}
	}()

	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

type Echo struct {
	*echo.Echo
}

// request body limit; certificate uploads and bulk filters are small
const bodyLimit = "4M"

// NewEcho create new echo with default middlewares
func NewEcho(middlewares ...echo.MiddlewareFunc) *Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &echoValidator{validator: validate}
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(LogErrors(http.StatusInternalServerError))
	e.Use(middlewares...)

	return &Echo{e}
}

// LogErrors log error if http status code >= logCode
func LogErrors(logCode int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			code := http.StatusInternalServerError
			var ve validator.ValidationErrors
			if errors.As(err, &ve) {
				err = echo.NewHTTPError(http.StatusBadRequest, ve.Error())
			}

			var he *echo.HTTPError
			if errors.As(err, &he) {
				code = he.Code
			}

			if code >= logCode {
				c.Logger().Errorf("%+v", err)
			}

			return err
		}
	}
}

// ExtractParam extract path parameter and callback to use custom context
// Usage:
//
//	e.GET("/:certificate_id", handler, ExtractParam("certificate_id", func(c echo.Context, val string) { c.(*Context).certificateID = val }))
func ExtractParam(param string, callback func(c echo.Context, val string)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			callback(c, c.Param(param))

			return next(c)
		}
	}
}

// Bind bind & validate
func Bind(c echo.Context, val interface{}) error {
	if err := c.Bind(val); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.Validate(val)
}

type echoValidator struct {
	validator *validator.Validate
}

func (v *echoValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

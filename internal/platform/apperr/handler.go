package apperr

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// envelope is the error body every endpoint returns on failure.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HTTPErrorHandler returns an echo error handler that renders domain errors
// with their mapped status and a {success:false, message} body. Internal
// errors are logged with their cause; the client only sees a generic message.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"

		if e := As(err); e != nil {
			status = e.HTTPStatus()
			message = e.Message
			if e.Kind == KindInternal {
				logger.Error().Err(e.Err).
					Str("path", c.Request().URL.Path).
					Msg("internal error")
				message = "internal server error"
			}
		} else if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		} else {
			logger.Error().Err(err).
				Str("path", c.Request().URL.Path).
				Msg("unhandled error")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, envelope{Success: false, Message: message})
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}

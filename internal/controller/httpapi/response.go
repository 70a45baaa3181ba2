package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/hostel_rooms/internal/apperr"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// envelope общий формат ответа
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

func okMessage(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	default:
		return "HTTP_ERROR"
	}
}

// errorHandler переводит ошибки сервисов и echo в конверт ответа
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   envelope
			he     *echo.HTTPError
		)

		switch {
		case errors.As(err, &he):
			status = he.Code
			body.Code = httpErrorCode(status)
			body.Message = http.StatusText(status)
			// Коды из middleware авторизации отдаём как есть
			if msg, isString := he.Message.(string); isString && msg != "" {
				if status == http.StatusUnauthorized || status == http.StatusForbidden {
					body.Code = msg
				} else {
					body.Message = msg
				}
			}
		default:
			kind := apperr.KindOf(err)
			status = statusOf(kind)
			body.Code = apperr.CodeOf(err)
			body.Message = err.Error()

			if status == http.StatusInternalServerError {
				logger.Error("Request failed with internal error",
					zap.String("method", c.Request().Method),
					zap.String("path", c.Path()),
					zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
					zap.Error(err),
				)
				body.Message = "internal server error"
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
	}
}

// bind разбирает тело запроса
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// pathID разбирает числовой параметр пути
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

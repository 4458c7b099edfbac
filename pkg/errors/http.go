package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ToHTTPStatus는 에러 코드를 HTTP 상태 코드로 변환합니다
func ToHTTPStatus(code string) int {
	httpStatus, _ := GetCodeMapping(code)
	return httpStatus
}

// ToHTTPError는 에러를 Echo HTTP 에러로 변환합니다.
// 응답 본문은 {"error": 메시지, "code": 코드} 형식입니다.
func ToHTTPError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		return echo.NewHTTPError(ToHTTPStatus(appErr.Code()), echo.Map{
			"error": appErr.Message(),
			"code":  appErr.Code(),
		})
	}

	var echoErr *echo.HTTPError
	if As(err, &echoErr) {
		return echoErr
	}

	return echo.NewHTTPError(http.StatusInternalServerError, echo.Map{
		"error": "internal server error",
		"code":  ErrInternal,
	})
}

// FromHTTPError는 Echo HTTP 에러를 내부 에러로 변환합니다
func FromHTTPError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		return err
	}

	if echoErr, ok := err.(*echo.HTTPError); ok {
		msg, ok := echoErr.Message.(string)
		if !ok {
			msg = http.StatusText(echoErr.Code)
		}
		return NewAppError(httpStatusToCode(echoErr.Code), msg, nil)
	}

	return NewAppError(ErrInternal, err.Error(), err)
}

// NewEchoErrorHandler는 AppError를 코드에 맞는 상태로 응답하는 Echo 에러 핸들러를 만듭니다.
// 5xx 에러만 에러 레벨로 기록합니다.
func NewEchoErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := ToHTTPError(err)
		if httpErr.Code >= http.StatusInternalServerError {
			LogError(logger, FromHTTPError(err), "request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()))
		}

		body := httpErr.Message
		if msg, ok := body.(string); ok {
			body = echo.Map{"error": msg}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.Code)
		} else {
			err = c.JSON(httpErr.Code, body)
		}
		if err != nil {
			logger.Error("failed to write error response", zap.Error(err))
		}
	}
}

func httpStatusToCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrInvalidArgument
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnprocessableEntity:
		return ErrFailedPrecondition
	case http.StatusGatewayTimeout:
		return ErrTimeout
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	case http.StatusNotImplemented:
		return ErrNotImplemented
	default:
		return ErrInternal
	}
}

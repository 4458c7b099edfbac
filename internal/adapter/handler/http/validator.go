package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	pkgerrors "github.com/wekeepgrowing/workshop-backend/pkg/errors"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return pkgerrors.InvalidArgument(validationMessage(err), err)
	}
	return nil
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	return "invalid field " + fe.Namespace() + ": failed " + fe.Tag()
}

var _ echo.Validator = (*RequestValidator)(nil)

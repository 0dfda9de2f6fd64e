package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationError(message string) error {
	return &lmsAuth.Error{Kind: lmsAuth.KindValidation, Message: message}
}

// decode reads a JSON body into dst and validates it. An empty body decodes
// to the zero value so that the engine reports the missing fields itself.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return validationError("Invalid request body")
	}

	err := h.validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}

	first := verrs[0]
	switch first.Tag() {
	case "required":
		return validationError(fmt.Sprintf("Field '%s' is required", first.Field()))
	case "email":
		return validationError(fmt.Sprintf("Field '%s' must be a valid email address", first.Field()))
	case "max":
		return validationError(fmt.Sprintf("Field '%s' must be at most %s characters long", first.Field(), first.Param()))
	case "oneof":
		return validationError(fmt.Sprintf("Field '%s' must be one of: %s", first.Field(), first.Param()))
	case "url", "http_url":
		return validationError(fmt.Sprintf("Field '%s' must be a valid URL", first.Field()))
	default:
		return validationError(fmt.Sprintf("Field '%s' is invalid", first.Field()))
	}
}

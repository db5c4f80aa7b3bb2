package rest

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	msgInternal      = "Something went wrong, try again later"
	msgRouteNotFound = "Route does not exist"
	msgForbidden     = "Unauthorized to access this route"
	msgInvalidBody   = "Invalid request body"
)

// invalidIDError is a path id that cannot name any stored item.
type invalidIDError struct {
	id string
}

func (e *invalidIDError) Error() string { return "No item found with id: " + e.id }

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// statusFor maps an error to the response status and client message.
func statusFor(err error) (int, string) {
	var (
		verrs   validator.ValidationErrors
		dup     *common.DuplicateKeyError
		idErr   *invalidIDError
		appErr  *common.Error
		bodyErr *bodyError
	)

	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, validationMessage(verrs)
	case errors.As(err, &bodyErr):
		return http.StatusBadRequest, bodyErr.message
	case errors.As(err, &dup):
		return http.StatusBadRequest, fmt.Sprintf("Duplicate value entered for %q field, please choose another value.", dup.Field)
	case errors.As(err, &idErr):
		return http.StatusNotFound, idErr.Error()
	case errors.As(err, &appErr):
		return kindStatus(appErr.Kind), appErr.Message
	}
	return http.StatusInternalServerError, msgInternal
}

func kindStatus(kind error) int {
	switch {
	case errors.Is(kind, common.ErrorBadRequest):
		return http.StatusBadRequest
	case errors.Is(kind, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(kind, common.ErrorNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// bodyError reports a request body that could not be decoded. Message is
// shown to the client as is.
type bodyError struct {
	message string
	err     error
}

func (e *bodyError) Error() string { return e.message + ": " + e.err.Error() }
func (e *bodyError) Unwrap() error { return e.err }

// bindError classifies a gin binding error. Validation failures are kept,
// everything else becomes a bodyError with the given message.
func bindError(err error, message string) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return &bodyError{message: message, err: err}
}

// fieldMessages override the generic text for specific request fields,
// keyed by "<json field>.<tag>".
var fieldMessages = map[string]string{
	"name.required":            "The user name is required. Please provide a valid name with at least 3 characters.",
	"email.required":           "The email address is required. Please provide a valid email address.",
	"email.email":              "Please provide a valid email address (e.g., user@example.com).",
	"password.required":        "The password is required. Please create a strong password.",
	"password.min":             "Password must be at least 6 characters long.",
	"password.max":             auth.MsgPasswordTooLong,
	"passwordConfirm.required": "Please confirm your password.",
	"passwordConfirm.eqfield":  "Password confirmation does not match password.",
	"number.required":          "Table number is required.",
	"capacity.required":        "Capacity is required.",
	"capacity.min":             "Capacity must be at least 1.",
	"notes.max":                "Notes cannot be longer than 200 characters.",
}

func validationMessage(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, ", ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	if m, ok := fieldMessages[field+"."+fe.Tag()]; ok {
		return m
	}

	text := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "min":
		if text {
			return fmt.Sprintf("The %s must be at least %s characters long.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max":
		if text {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must not exceed %s.", field, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("Invalid %s. Valid values are: %s.", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "url":
		return fmt.Sprintf("The %s must be a valid URL.", field)
	case "email":
		return fieldMessages["email.email"]
	}
	return fmt.Sprintf("The %s field is invalid.", field)
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, errorBody{Success: false, Message: message})
}

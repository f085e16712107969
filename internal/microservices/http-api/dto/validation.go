package dto

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"schoollibrary/internal/microservices/http-api/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var isbnPattern = regexp.MustCompile(`^([0-9]{1,13}|[0-9]{1,12}[Xx])$`)

// NormalizeISBN drops hyphens and spaces.
func NormalizeISBN(s string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(s))
}

func validISBN(fl validator.FieldLevel) bool {
	return isbnPattern.MatchString(NormalizeISBN(fl.Field().String()))
}

func validRole(fl validator.FieldLevel) bool {
	_, err := models.ParseRole(fl.Field().String())
	return err == nil
}

// RegisterValidators adds the "library_isbn" and "role" tags to gin's validator
// and makes it report fields by JSON name.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	v.RegisterTagNameFunc(jsonFieldName)
	if err := v.RegisterValidation("library_isbn", validISBN); err != nil {
		return fmt.Errorf("register isbn validator: %w", err)
	}
	if err := v.RegisterValidation("role", validRole); err != nil {
		return fmt.Errorf("register role validator: %w", err)
	}
	return nil
}

// ValidationMessage turns binding errors into a short client message.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "library_isbn":
			msgs = append(msgs, field+" must be a valid ISBN")
		case "role":
			msgs = append(msgs, field+" must be one of STUDENT, LIBRARIAN, PRINCIPAL, ADMIN")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// jsonFieldName reports fields by their JSON name.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

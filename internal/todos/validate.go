package todos

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type createTodoRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

type updateTodoRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	Completed   *bool   `json:"completed"`
	CompletedAt *Date   `json:"completedAt"`
}

func (req createTodoRequest) toNewTodo() NewTodo {
	return NewTodo{Title: req.Title, Description: req.Description}
}

// toUpdate applies full-replace semantics: a missing completed flag is false.
func (req updateTodoRequest) toUpdate() TodoUpdate {
	u := TodoUpdate{
		Title:       req.Title,
		Description: req.Description,
		CompletedAt: req.CompletedAt,
	}
	if req.Completed != nil {
		u.Completed = *req.Completed
	}
	return u
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// validateRequest returns one fieldError per failed constraint.
func validateRequest(req any) []fieldError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fieldError{{Message: err.Error()}}
	}
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

package transfer

import (
	"github.com/go-playground/validator/v10"
	"github.com/maheshrc27/postsheet/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("post_status", validatePostStatus)
	return v
}

func validatePostStatus(fl validator.FieldLevel) bool {
	return models.PostStatus(fl.Field().String()).Valid()
}

// Validate checks the struct tags of a request payload.
func Validate(payload any) error {
	return validate.Struct(payload)
}

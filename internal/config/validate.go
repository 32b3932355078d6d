package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/changetower/pkg/errors"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("branch", func(fl validator.FieldLevel) bool {
		return errors.ValidateBranch(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("package", func(fl validator.FieldLevel) bool {
		return errors.ValidatePackageName(fl.Field().String()) == nil
	})
	return v
}

// Validate checks every setting. The error lists each offending field.
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate config")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.New(errors.ErrCodeInvalidConfig, "invalid config: %s", strings.Join(msgs, "; "))
}

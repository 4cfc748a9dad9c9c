package config

import "github.com/go-playground/validator/v10"

// NewValidator returns a validator.v10 instance configured for Config's
// struct tags, in the shape LoadConfig calls it.
func NewValidator() (*validator.Validate, error) {
	return validator.New(), nil
}

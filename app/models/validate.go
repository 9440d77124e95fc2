package models

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs the struct-tag rules on any value. Controllers use it
// for RPC inputs.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}

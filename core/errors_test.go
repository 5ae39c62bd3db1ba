package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsValidationError(t *testing.T) {
	type form struct {
		Name string `json:"name" validate:"required"`
	}
	validate := NewValidator(NewTranslator())
	structErr := validate.Struct(form{})

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"field error", NewFieldError("usn", "required"), true},
		{"wrapped field error", errors.Wrap(NewFieldError("usn", "required"), "registering"), true},
		{"struct validation", structErr, true},
		{"wrapped struct validation", errors.Wrap(structErr, "creating request"), true},
		{"store error", NewStoreError(StoreWrite, "students", errors.New("boom")), false},
		{"sentinel", ErrFileTooLarge, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidationError(tt.err))
		})
	}
}

package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testSchema struct {
	Name  string  `json:"name" validate:"required,min=3,max=5"`
	Email string  `json:"email" validate:"required,email"`
	Role  string  `json:"role" validate:"omitempty,oneof=admin user"`
	Note  *string `json:"note" validate:"omitempty,min=2"`
}

func strptr(s string) *string {
	return &s
}

func TestValidatorStruct(t *testing.T) {
	testCases := []struct {
		name   string
		input  testSchema
		errors map[string]string
	}{
		{
			name:   "valid",
			input:  testSchema{Name: "abc", Email: "a@b.com"},
			errors: map[string]string{},
		},
		{
			name:  "missing fields",
			input: testSchema{},
			errors: map[string]string{
				"name":  "must be provided",
				"email": "must be provided",
			},
		},
		{
			name:  "length and format",
			input: testSchema{Name: "ab", Email: "nope", Role: "root", Note: strptr("x")},
			errors: map[string]string{
				"name":  "must be at least 3 characters long",
				"email": "must be a valid email address",
				"role":  "must be one of [admin user]",
				"note":  "must be at least 2 characters long",
			},
		},
		{
			name:   "too long",
			input:  testSchema{Name: "abcdef", Email: "a@b.com"},
			errors: map[string]string{"name": "must be at most 5 characters long"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewValidator()
			v.Struct(tc.input)
			assert.Equal(t, tc.errors, v.Errors)
			assert.Equal(t, len(tc.errors) == 0, v.Valid())
		})
	}
}

type codeSchema struct {
	Code string `json:"code" validate:"required,upper_code"`
}

func TestRegisterRule(t *testing.T) {
	RegisterRule("upper_code", "must be upper case letters", func(s string) bool {
		return s != "" && strings.ToUpper(s) == s
	})

	v := NewValidator()
	v.Struct(codeSchema{Code: "abc"})
	assert.Equal(t, map[string]string{"code": "must be upper case letters"}, v.Errors)

	v = NewValidator()
	v.Struct(codeSchema{Code: "ABC"})
	assert.True(t, v.Valid())
}

package userservice

import (
	"github.com/sushihentaime/blogsphere/internal/common"
)

func validateCreate(v *common.Validator, req *CreateUserRequest) {
	v.Struct(req)
}

func validateUpdate(v *common.Validator, req *UpdateUserRequest) {
	v.Struct(req)
}

func validateLogin(v *common.Validator, req *LoginRequest) {
	v.Struct(req)
}

func ValidateToken(v *common.Validator, token string) {
	v.Check(token != "", "token", "must be provided")
}

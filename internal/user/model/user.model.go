package model

import "beleske/pkg/form"

type RegisterForm struct {
	Username string `form:"username" validate:"required,min=4,max=20"`
	Password string `form:"password" validate:"required,min=4,max=20"`
}

type LoginForm struct {
	Username string `form:"username" validate:"required,min=4,max=20"`
	Password string `form:"password" validate:"required,min=4,max=20"`
}

// CredentialsPage feeds the login and register templates. The password is
// never echoed back.
type CredentialsPage struct {
	Username string
	Errors   form.Errors
}

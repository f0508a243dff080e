package domain

import "time"

type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"-"`
	Date     time.Time `json:"date"`
}

type RegisterForm struct {
	Name      string `form:"name" validate:"required"`
	Email     string `form:"email" validate:"required"`
	Password  string `form:"password" validate:"required,maxbytes=72"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}

type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

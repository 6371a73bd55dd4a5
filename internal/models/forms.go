package models

// MessageForm is the compose request body.
type MessageForm struct {
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
	ToEmail string `json:"toEmail" validate:"required,email"`
}

// SignupForm is the signup request body.
type SignupForm struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Password  string `json:"password" validate:"required,min=5"`
}

// ToUser builds an unsaved user from the form.
func (f SignupForm) ToUser() *User {
	return &User{
		Email:     f.Email,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Password:  f.Password,
	}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

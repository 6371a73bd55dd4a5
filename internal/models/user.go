package models

import "fmt"

// User is a mailbox owner. Email doubles as the login name.
// ID is zero until the user has been persisted.
type User struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Email     string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string `json:"-" gorm:"type:varchar(255)" validate:"required,min=5"` // never serialized
	FirstName string `json:"firstName" gorm:"type:varchar(100)" validate:"required"`
	LastName  string `json:"lastName" gorm:"type:varchar(100)" validate:"required"`
}

// Equal reports whether u and other are the same persisted user.
// Unsaved users are never equal to anything.
func (u *User) Equal(other *User) bool {
	if u == nil || other == nil {
		return false
	}
	if u.ID == 0 || other.ID == 0 {
		return false
	}
	return u.ID == other.ID
}

func (u *User) String() string {
	if u == nil {
		return "User[nil]"
	}
	return fmt.Sprintf("User[id=%d]", u.ID)
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is a customer or administrator account.
type User struct {
	ID        uint           `gorm:"primaryKey"                     json:"id"`
	FirstName string         `gorm:"size:100;not null"              json:"firstName"`
	LastName  string         `gorm:"size:100;not null"              json:"lastName"`
	Email     string         `gorm:"uniqueIndex;size:255;not null"  json:"email"`
	Password  string         `gorm:"size:255;not null"              json:"-"`
	Role      Role           `gorm:"size:20;not null;default:USER"  json:"role"`
	Address   string         `gorm:"size:500"                       json:"address"`
	Telephone string         `gorm:"size:50"                        json:"telephone"`
	Mobile    string         `gorm:"size:50"                        json:"mobile"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

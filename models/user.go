package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// User doubles as the profile record: email plus created/last-login
// timestamps, one row per account.
type User struct {
	gorm.Model
	Email       string     `json:"email" binding:"required" gorm:"unique;not null"`
	Password    string     `json:"password,omitempty" binding:"required" gorm:"not null"`
	LastLoginAt *time.Time `json:"last_login_at"`

	Items        []*Item        `json:"-" gorm:"foreignKey:OwnerID"`
	Transactions []*Transaction `json:"-" gorm:"foreignKey:OwnerID"`
}

package models

import (
	"time"
)

// User 用户模型
type User struct {
	ID         string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	Username   string     `gorm:"type:varchar(100)" json:"username"`
	Email      string     `gorm:"type:varchar(100)" json:"email"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	IsTestUser bool       `gorm:"default:false" json:"isTestUser"`
	Timezone   string     `gorm:"type:varchar(64)" json:"timezone"`
}

func (u *User) GetDisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Location 用户时区，用于按自然日统计
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

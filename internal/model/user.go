package model

import "time"

// swagger:model User
type User struct {
	BaseModel
	Name      string     `gorm:"size:100;not null" json:"name"`
	Email     string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	AvatarURL string     `gorm:"size:255" json:"avatarUrl"`
	Bio       string     `gorm:"type:text" json:"bio"`
	Timezone  string     `gorm:"size:64;default:'UTC'" json:"timezone"`
	Language  string     `gorm:"size:10;default:'en'" json:"language"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

package models

type User struct {
	BaseModel
	Name           string     `gorm:"not null"`
	Email          string     `gorm:"uniqueIndex;not null"`
	PasswordHash   string     `gorm:"not null"`
	Role           UserRole   `gorm:"type:varchar(20);not null;default:'user';index"`
	Status         UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	IsApproved     bool       `gorm:"not null;default:false"`
	Phone          string
	Bio            string `gorm:"type:text"`
	ProfilePicture string // путь в storage, напр. profile_pictures/abc.jpg
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

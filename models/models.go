package models

import "github.com/jinzhu/gorm"

// User - автор постов и комментариев. Аутентификация внешняя, пароли здесь не хранятся.
type User struct {
	gorm.Model
	Username  string `gorm:"unique"`
	Name      string
	AvatarURL string
	Role      string // admin, moderator или любое другое значение (обычный участник)
	Posts     []Post    `gorm:"foreignkey:UserID"`
	Comments  []Comment `gorm:"foreignkey:UserID"`
}

type Post struct {
	gorm.Model
	Title    string
	Content  string `gorm:"type:text"`
	Pinned   bool
	UserID   uint
	User     User
	Comments []Comment `gorm:"foreignkey:PostID"`
}

// Comment хранится плоско; ParentID может указывать на удалённую запись
type Comment struct {
	gorm.Model
	Content  string `gorm:"type:text"`
	PostID   uint   `gorm:"index"`
	UserID   uint
	User     User
	ParentID *uint
}

// Reaction - одна запись на пару (объект, пользователь); удаляется физически
type Reaction struct {
	gorm.Model
	TargetType string `gorm:"unique_index:idx_reaction_target_user"`
	TargetID   uint   `gorm:"unique_index:idx_reaction_target_user"`
	UserID     uint   `gorm:"unique_index:idx_reaction_target_user"`
	User       User
	Type       string
}

package repository

import (
	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/pg"
)

type UserEntity struct {
	pg.Model
	Name         string `gorm:"column:name;size:255;not null"`
	Email        string `gorm:"column:email;size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null"`
	Role         string `gorm:"column:role;size:16;not null;index"`
}

func (UserEntity) TableName() string {
	return "users"
}

func toUserEntity(m *model.User) *UserEntity {
	if m == nil {
		return nil
	}
	return &UserEntity{
		Model:        pg.Model{ID: m.ID, CreatedAt: m.CreatedAt},
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         string(m.Role),
	}
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{
		ID:           e.ID,
		Name:         e.Name,
		Email:        e.Email,
		Role:         model.Role(e.Role),
		PasswordHash: e.PasswordHash,
		CreatedAt:    e.CreatedAt,
	}
}

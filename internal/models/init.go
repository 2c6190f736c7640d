package models

import (
	"errors"

	"github.com/bookvine/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitDefaultAdmin 首次启动时创建初始管理员；已存在任意管理员则跳过。
func InitDefaultAdmin(username, password string) error {
	var existing Admin
	err := DB.Select("id").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if username == "" {
		username = "admin"
	}
	fallbackPassword := password == ""
	if fallbackPassword {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := DB.Create(&Admin{Username: username, PasswordHash: string(hash)}).Error; err != nil {
		return err
	}

	if fallbackPassword {
		logger.Warnw("default_admin_created_with_fallback_password", "username", username)
		return nil
	}
	logger.Infow("default_admin_created", "username", username)
	return nil
}

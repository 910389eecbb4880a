package dao

import (
	"errors"

	"gorm.io/gorm"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/timex"
)

// UserCreate 创建用户（测试与宿主引导用）
func (d *Dao) UserCreate(username, email string, isAdmin bool) (*model.User, error) {
	m := &model.User{
		Username:  username,
		Email:     email,
		IsAdmin:   isAdmin,
		CreatedAt: timex.Now(),
	}
	if err := d.DB().Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// UserGetByUID 根据 UID 获取用户，不存在返回 (nil, nil)
func (d *Dao) UserGetByUID(uid int64) (*model.User, error) {
	var m model.User
	err := d.DB().Where("uid = ?", uid).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

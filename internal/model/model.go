// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "Database":
		return db.AutoMigrate(Database{})

	case "Column":
		return db.AutoMigrate(Column{})

	case "Row":
		return db.AutoMigrate(Row{})

	case "Cell":
		return db.AutoMigrate(Cell{})

	case "RelationLink":
		return db.AutoMigrate(RelationLink{})

	case "HistorySnapshot":
		return db.AutoMigrate(HistorySnapshot{})

	case "PermissionGrant":
		return db.AutoMigrate(PermissionGrant{})

	case "User":
		return db.AutoMigrate(User{})

	case "Note":
		return db.AutoMigrate(Note{})
	}
	return nil
}

// AutoMigrateAll 迁移引擎用到的全部表
func AutoMigrateAll(db *gorm.DB) error {
	for _, key := range []string{
		"Database", "Column", "Row", "Cell", "RelationLink",
		"HistorySnapshot", "PermissionGrant", "User", "Note",
	} {
		if err := AutoMigrate(db, key); err != nil {
			return err
		}
	}
	return nil
}

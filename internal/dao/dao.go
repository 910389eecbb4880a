package dao

import (
	"context"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/papyrus-notes/table-engine/global"
	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/code"
	apperrors "github.com/papyrus-notes/table-engine/pkg/errors"
)

// Dao 数据访问对象，持有显式注入的 gorm 连接与上下文
type Dao struct {
	db  *gorm.DB
	ctx context.Context
}

func New(db *gorm.DB, ctx context.Context) *Dao {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Dao{db: db, ctx: ctx}
}

// DB 返回绑定了上下文的连接
func (d *Dao) DB() *gorm.DB {
	return d.db.WithContext(d.ctx)
}

// Tx runs fn inside one all-or-nothing transaction. The callback receives a
// Dao bound to the transaction; any error rolls everything back.
// Tx 在单个事务内执行 fn，回调得到绑定事务的 Dao，出错即整体回滚。
func (d *Dao) Tx(fn func(tx *Dao) error) error {
	return d.db.WithContext(d.ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Dao{db: tx, ctx: d.ctx})
	})
}

var migrateSF singleflight.Group

// AutoMigrate 迁移全部引擎表，进程内并发调用去重
func (d *Dao) AutoMigrate() error {
	_, err, _ := migrateSF.Do("engine", func() (any, error) {
		return nil, model.AutoMigrateAll(d.db)
	})
	return err
}

// NewDBEngine 按配置打开嵌入式数据库连接
func NewDBEngine(c global.Database) (*gorm.DB, error) {

	if c.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(c.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true, // 使用单数表名
		},
	})
	if err != nil {
		return nil, apperrors.NewAppError(code.ErrorStorage, err).WithDetails(c.Path)
	}

	if global.Config != nil && global.Config.Server.RunMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)

	return db, nil
}

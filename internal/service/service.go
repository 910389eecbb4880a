// Package service implements the table engine: schema management, the row
// orchestrator with its four resolution passes, validation, permissions and
// version history. The host application embeds a Service and owns transport
// and presentation.
//
// Package service 实现表格引擎的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/papyrus-notes/table-engine/global"
	"github.com/papyrus-notes/table-engine/internal/dao"
	"github.com/papyrus-notes/table-engine/internal/model"
)

// SystemUID 系统内部调用者，绕过权限判定
const SystemUID int64 = 0

// defaultMaxResolveDepth 未加载配置时的递归解析深度上限
const defaultMaxResolveDepth = 10

type Service struct {
	ctx context.Context
	dao *dao.Dao
	log *zap.Logger
}

// New builds a Service on an explicitly injected DB handle. Nothing global
// is touched, so tests can run each on their own in-memory store.
// New 基于显式注入的数据库连接构建 Service。
func New(db *gorm.DB, ctx context.Context) *Service {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := global.Log()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ctx: ctx,
		dao: dao.New(db, ctx),
		log: logger,
	}
}

// withTx 返回绑定到事务 Dao 的 Service 副本
func (svc *Service) withTx(tx *dao.Dao) *Service {
	return &Service{ctx: svc.ctx, dao: tx, log: svc.log}
}

// AutoMigrate 迁移引擎的全部表结构
func (svc *Service) AutoMigrate() error {
	return svc.dao.AutoMigrate()
}

func (svc *Service) maxResolveDepth() int {
	if global.Config != nil && global.Config.Engine.MaxResolveDepth > 0 {
		return global.Config.Engine.MaxResolveDepth
	}
	return defaultMaxResolveDepth
}

// 每个实体的写锁注册表。版本号分配是“读最大值写最大值加一”，
// 必须按实体串行化写入才能保证版本号单调且不重复。
var entityLocks sync.Map

func lockEntity(entityType model.HistoryEntity, entityID int64) *sync.Mutex {
	key := fmt.Sprintf("%s:%d", entityType, entityID)
	actual, _ := entityLocks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

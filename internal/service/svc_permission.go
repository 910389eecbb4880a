package service

import (
	"go.uber.org/zap"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/code"
	"github.com/papyrus-notes/table-engine/pkg/logger"
)

// ownerOf 返回对象的所有者 UID；对象不存在时 found 为 false
func (svc *Service) ownerOf(objectType model.ObjectType, objectID int64) (owner *int64, found bool, err error) {
	switch objectType {
	case model.ObjectDatabase:
		db, err := svc.dao.DatabaseGetById(objectID)
		if err != nil || db == nil {
			return nil, false, err
		}
		return db.OwnerUID, true, nil
	case model.ObjectNote:
		note, err := svc.dao.NoteGetById(objectID)
		if err != nil || note == nil {
			return nil, false, err
		}
		return note.OwnerUID, true, nil
	}
	return nil, false, nil
}

// CheckPermission decides access in fixed order: system caller, owner,
// public read, explicit grant, deny. A missing object always denies.
// CheckPermission 按固定顺序判定访问权限：系统调用者、所有者、公共只读、
// 显式授权，否则拒绝。对象不存在一律拒绝。
func (svc *Service) CheckPermission(uid int64, objectType model.ObjectType, objectID int64, required model.GrantLevel) (bool, error) {
	if uid == SystemUID {
		return true, nil
	}

	owner, found, err := svc.ownerOf(objectType, objectID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	if owner != nil && *owner == uid {
		return true, nil
	}

	// 无所有者的对象默认公共只读
	if owner == nil && required == model.LevelRead {
		return true, nil
	}

	grant, err := svc.dao.GrantGet(objectType, objectID, uid)
	if err != nil {
		return false, err
	}
	if grant != nil && grant.Level.Satisfies(required) {
		return true, nil
	}
	return false, nil
}

// canManageGrants 判定 acting 用户能否管理某对象的授权：
// 对象级判定（所有者或对象 ADMIN）优先，全局管理角色仅作兜底。
func (svc *Service) canManageGrants(actingUID int64, objectType model.ObjectType, objectID int64) (bool, error) {
	ok, err := svc.CheckPermission(actingUID, objectType, objectID, model.LevelAdmin)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	user, err := svc.dao.UserGetByUID(actingUID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsAdmin, nil
}

// GrantPermission 为用户授予对象访问级别
func (svc *Service) GrantPermission(actingUID int64, objectType model.ObjectType, objectID, uid int64, level model.GrantLevel) error {
	if level.Rank() < 0 {
		return code.ErrorInvalidParams.WithDetails("unknown grant level " + string(level))
	}

	allowed, err := svc.canManageGrants(actingUID, objectType, objectID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if !allowed {
		return code.ErrorGrantNotAllowed
	}

	if err := svc.dao.GrantUpsert(objectType, objectID, uid, level); err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}

	svc.log.Info("permission granted",
		zap.String("objectType", string(objectType)),
		zap.Int64("objectId", objectID),
		zap.Int64(logger.FieldUID, uid),
		zap.String("level", string(level)))
	return nil
}

// RevokePermission 撤销用户对对象的授权
func (svc *Service) RevokePermission(actingUID int64, objectType model.ObjectType, objectID, uid int64) error {
	allowed, err := svc.canManageGrants(actingUID, objectType, objectID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if !allowed {
		return code.ErrorGrantNotAllowed
	}

	if err := svc.dao.GrantDelete(objectType, objectID, uid); err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	return nil
}

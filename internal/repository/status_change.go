package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"service-portal/internal/model"
)

var (
	ErrVehicleUnavailable = errors.New("vehicle is not available")
	ErrStaleStatus        = errors.New("status changed since it was read")
)

const defaultListLimit = 200

// StatusChange is a compare-and-set on a request row: the update only
// applies while the stored status still equals From.
type StatusChange struct {
	ID      uuid.UUID
	From    model.RequestStatus
	Updates map[string]interface{}
	// Guard narrows the match further, e.g. on the assigned officer.
	Guard     string
	GuardArgs []interface{}
	Log       *model.RequestStatusLog
}

func applyStatusChange(tx *gorm.DB, table interface{}, change StatusChange) error {
	query := tx.Model(table).Where("id = ? AND status = ?", change.ID, change.From)
	if change.Guard != "" {
		query = query.Where(change.Guard, change.GuardArgs...)
	}
	res := query.Updates(change.Updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	if change.Log != nil {
		return tx.Create(change.Log).Error
	}
	return nil
}

func applyPaging(query *gorm.DB, limit, offset int) *gorm.DB {
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		return query.Limit(limit)
	}
	return query.Limit(defaultListLimit)
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"service-portal/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) CountByUsername(ctx context.Context, username string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role model.UserRole) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("role = ?", role).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteStaff removes a staff account. References held by requests,
// dispatches and history rows are cleared first; the requests survive.
// It returns the number of complaints that lost their officer.
func (r *UserRepository) DeleteStaff(ctx context.Context, id uuid.UUID) (int64, error) {
	var released int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Complaint{}).
			Where("assigned_officer_id = ?", id).
			Update("assigned_officer_id", nil)
		if res.Error != nil {
			return res.Error
		}
		released = res.RowsAffected

		if err := tx.Model(&model.DispatchRecord{}).
			Where("assigned_by_id = ?", id).
			Update("assigned_by_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.ComplaintUpdate{}).
			Where("updated_by_id = ?", id).
			Update("updated_by_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.RequestStatusLog{}).
			Where("changed_by = ?", id).
			Update("changed_by", nil).Error; err != nil {
			return err
		}

		res = tx.Where("id = ? AND role <> ?", id, model.UserRoleCitizen).Delete(&model.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

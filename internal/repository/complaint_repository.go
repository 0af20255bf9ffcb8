package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"service-portal/internal/model"
)

type ComplaintRepository struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

type ComplaintFilter struct {
	CitizenID         *uuid.UUID
	Statuses          []model.RequestStatus
	Unassigned        bool
	AssignedOfficerID *uuid.UUID
	CreatedFrom       *time.Time
	ResolvedFrom      *time.Time
	Limit             int
	Offset            int
}

func (r *ComplaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]model.Complaint, error) {
	query := r.filtered(ctx, filter)
	query = applyPaging(query, filter.Limit, filter.Offset)

	var complaints []model.Complaint
	if err := query.
		Order("complaints.created_at DESC").
		Preload("UtilityType").
		Preload("AssignedOfficer").
		Find(&complaints).Error; err != nil {
		return nil, err
	}
	return complaints, nil
}

func (r *ComplaintRepository) Count(ctx context.Context, filter ComplaintFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ComplaintRepository) filtered(ctx context.Context, filter ComplaintFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Complaint{})

	if filter.CitizenID != nil {
		query = query.Where("complaints.citizen_id = ?", *filter.CitizenID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("complaints.status IN ?", filter.Statuses)
	}
	if filter.Unassigned {
		query = query.Where("complaints.assigned_officer_id IS NULL AND complaints.status = ?", model.RequestStatusPending)
	}
	if filter.AssignedOfficerID != nil {
		query = query.Where("complaints.assigned_officer_id = ?", *filter.AssignedOfficerID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("complaints.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.ResolvedFrom != nil {
		query = query.Where("complaints.resolved_at >= ?", *filter.ResolvedFrom)
	}
	return query
}

func (r *ComplaintRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Complaint, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *ComplaintRepository) GetByCode(ctx context.Context, code string) (*model.Complaint, error) {
	return r.getBy(ctx, "complaint_code = ?", code)
}

func (r *ComplaintRepository) getBy(ctx context.Context, cond string, arg interface{}) (*model.Complaint, error) {
	var complaint model.Complaint
	if err := r.db.WithContext(ctx).
		Preload("UtilityType").
		Preload("AssignedOfficer").
		Preload("Updates", func(db *gorm.DB) *gorm.DB {
			return db.Order("complaint_updates.created_at ASC")
		}).
		First(&complaint, cond, arg).Error; err != nil {
		return nil, err
	}
	return &complaint, nil
}

// Create numbers the complaint from the per-prefix counter and stores it
// with its first history row. The counter row is locked by the increment
// until the transaction ends, so concurrent submissions get distinct codes.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *model.Complaint, prefix string, log *model.RequestStatusLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSequence(tx, prefix)
		if err != nil {
			return err
		}
		complaint.Code = model.FormatComplaintCode(prefix, seq)

		if err := tx.Omit(clause.Associations).Create(complaint).Error; err != nil {
			return err
		}
		if log != nil {
			log.RequestID = complaint.ID
			if err := tx.Create(log).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func nextSequence(tx *gorm.DB, prefix string) (int64, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ComplaintSequence{Prefix: prefix, LastValue: 0}).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&model.ComplaintSequence{}).
		Where("prefix = ?", prefix).
		UpdateColumn("last_value", gorm.Expr("last_value + ?", 1)).Error; err != nil {
		return 0, err
	}
	var seq model.ComplaintSequence
	if err := tx.First(&seq, "prefix = ?", prefix).Error; err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}

// Transition applies a status change and optionally records an officer note.
func (r *ComplaintRepository) Transition(ctx context.Context, change StatusChange, update *model.ComplaintUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyStatusChange(tx, &model.Complaint{}, change); err != nil {
			return err
		}
		if update != nil {
			return tx.Create(update).Error
		}
		return nil
	})
}

// Rate stores the citizen's rating once the complaint is resolved.
// Zero rows means the complaint is not resolved or not the citizen's.
func (r *ComplaintRepository) Rate(ctx context.Context, id, citizenID uuid.UUID, rating int, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Complaint{}).
		Where("id = ? AND citizen_id = ? AND status = ?", id, citizenID, model.RequestStatusResolved).
		Updates(map[string]interface{}{
			"satisfaction_rating": rating,
			"updated_at":          at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AverageRating returns the mean satisfaction rating, or nil with no ratings.
func (r *ComplaintRepository) AverageRating(ctx context.Context) (*float64, error) {
	var avg sql.NullFloat64
	if err := r.db.WithContext(ctx).
		Model(&model.Complaint{}).
		Select("AVG(satisfaction_rating)").
		Where("satisfaction_rating IS NOT NULL").
		Row().Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

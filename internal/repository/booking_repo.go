package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paiban/internal/model"
	pkgerrors "paiban/pkg/errors"
)

// BookingFilter 预约列表查询条件
type BookingFilter struct {
	From       *time.Time
	To         *time.Time
	ResourceID *string
	Status     *model.BookingStatus
}

// BookingRepository 预约记录数据访问接口
//
// CreateChecked / UpdateChecked 在单个事务内完成「冲突复查 + 写入」，
// 构成冲突检测的权威保证：事务内复查拦截常规竞态，
// 数据库排它约束 bookings_no_overlap 兜底幻读，两者均映射为
// pkgerrors.ErrScheduleConflict
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	CreateChecked(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByOrgAndDateRange(ctx context.Context, orgID string, from, to time.Time) ([]model.Booking, error)
	ListByResourceAndDate(ctx context.Context, orgID, resourceID string, date time.Time) ([]model.Booking, error)
	ListByOrg(ctx context.Context, orgID string, filter BookingFilter, offset, limit int) ([]model.Booking, int64, error)
	Update(ctx context.Context, booking *model.Booking) error
	UpdateChecked(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type bookingRepo struct {
	db *gorm.DB
}

// NewBookingRepo 创建 BookingRepository 实例
func NewBookingRepo(db *gorm.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	err := r.db.WithContext(ctx).Create(booking).Error
	return mapConflictErr(err)
}

func (r *bookingRepo) CreateChecked(ctx context.Context, booking *model.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := overlapCheck(tx, booking); err != nil {
			return err
		}
		return tx.Create(booking).Error
	})
	return mapConflictErr(err)
}

func (r *bookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.WithContext(ctx).
		Preload("Resource").
		Where("booking_id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepo) ListByOrgAndDateRange(ctx context.Context, orgID string, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Resource").
		Where("organization_id = ? AND date >= ? AND date <= ?", orgID, from, to).
		Order("date ASC, start_time ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) ListByResourceAndDate(ctx context.Context, orgID, resourceID string, date time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND resource_id = ? AND date = ?", orgID, resourceID, date).
		Order("start_time ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) ListByOrg(ctx context.Context, orgID string, filter BookingFilter, offset, limit int) ([]model.Booking, int64, error) {
	var bookings []model.Booking
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("organization_id = ?", orgID)

	if filter.From != nil {
		db = db.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("date <= ?", *filter.To)
	}
	if filter.ResourceID != nil {
		db = db.Where("resource_id = ?", *filter.ResourceID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Resource").
		Offset(offset).Limit(limit).
		Order("date ASC, start_time ASC").
		Find(&bookings).Error
	return bookings, total, err
}

func (r *bookingRepo) Update(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateVersioned(tx, booking)
	})
}

func (r *bookingRepo) UpdateChecked(ctx context.Context, booking *model.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := overlapCheck(tx, booking); err != nil {
			return err
		}
		return updateVersioned(tx, booking)
	})
	return mapConflictErr(err)
}

func (r *bookingRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	// 先记录删除人，再走 gorm 软删除
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Booking{}).
			Where("booking_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("booking_id = ?", id).Delete(&model.Booking{}).Error
	})
}

// updateVersioned 乐观锁更新：version 不匹配说明记录已被并发修改
func updateVersioned(tx *gorm.DB, booking *model.Booking) error {
	oldVersion := booking.Version
	result := tx.Model(booking).
		Where("booking_id = ? AND version = ?", booking.BookingID, oldVersion).
		Updates(map[string]interface{}{
			"title":       booking.Title,
			"type":        booking.Type,
			"date":        booking.Date,
			"start_time":  booking.StartTime,
			"end_time":    booking.EndTime,
			"status":      booking.Status,
			"resource_id": booking.ResourceID,
			"notes":       booking.Notes,
			"updated_by":  booking.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	booking.Version = oldVersion + 1
	return nil
}

// overlapCheck 事务内复查：锁定同资源同日的占用记录并检测半开区间重叠
// 未绑定资源的记录不占用任何日历，直接放行
func overlapCheck(tx *gorm.DB, booking *model.Booking) error {
	if booking.ResourceID == nil {
		return nil
	}

	var ids []string
	err := tx.Model(&model.Booking{}).
		Select("booking_id").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("resource_id = ? AND date = ?", *booking.ResourceID, booking.Date).
		Where("status IN ?", []model.BookingStatus{model.StatusPending, model.StatusApproved, model.StatusSwapRequested}).
		Where("booking_id <> ?", booking.BookingID).
		Where("start_time < ? AND end_time > ?", booking.EndTime, booking.StartTime).
		Find(&ids).Error
	if err != nil {
		return err
	}
	if len(ids) > 0 && booking.Status.Occupies() {
		return pkgerrors.ErrScheduleConflict
	}
	return nil
}

// mapConflictErr 将数据库排它约束（SQLSTATE 23P01）映射为冲突错误
func mapConflictErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
		return pkgerrors.ErrScheduleConflict
	}
	return err
}

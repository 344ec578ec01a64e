package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Booking  BookingRepository
	Employee EmployeeRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Booking:  NewBookingRepo(db),
		Employee: NewEmployeeRepo(db),
	}
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"paiban/internal/model"
)

// EmployeeRepository 员工花名册数据访问接口（只读）
// 花名册的增删改由外部人事模块负责，这里只提供排班所需的读取
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	ListByOrganization(ctx context.Context, orgID string) ([]model.Employee, error)
}

type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", id).
		First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) ListByOrganization(ctx context.Context, orgID string) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("department ASC, name ASC").
		Find(&employees).Error
	return employees, err
}

package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"paiban/internal/dto"
	"paiban/internal/repository"
)

// EmployeeService 员工花名册业务接口（只读）
type EmployeeService interface {
	Get(ctx context.Context, orgID, employeeID string) (*dto.EmployeeResponse, error)
	List(ctx context.Context, orgID string) ([]dto.EmployeeResponse, error)
}

type employeeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(repo *repository.Repository, logger *zap.Logger) EmployeeService {
	return &employeeService{repo: repo, logger: logger}
}

func (s *employeeService) Get(ctx context.Context, orgID, employeeID string) (*dto.EmployeeResponse, error) {
	employee, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}
	if employee.OrganizationID != orgID {
		return nil, ErrEmployeeNotFound
	}
	return toEmployeeResponse(employee), nil
}

func (s *employeeService) List(ctx context.Context, orgID string) ([]dto.EmployeeResponse, error) {
	employees, err := s.repo.Employee.ListByOrganization(ctx, orgID)
	if err != nil {
		s.logger.Error("查询组织花名册失败", zap.Error(err))
		return nil, err
	}
	resp := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		resp = append(resp, *toEmployeeResponse(&employees[i]))
	}
	return resp, nil
}

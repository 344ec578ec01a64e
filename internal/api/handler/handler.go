package handler

import (
	"paiban/internal/service"
	"paiban/pkg/redis"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Booking  *BookingHandler
	Schedule *ScheduleHandler
	Employee *EmployeeHandler
	Intake   *IntakeHandler
	Auth     *AuthHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, rdb *redis.Client) *Handler {
	return &Handler{
		Booking:  NewBookingHandler(svc.Booking),
		Schedule: NewScheduleHandler(svc.ScheduleView, svc.Export),
		Employee: NewEmployeeHandler(svc.Employee),
		Intake:   NewIntakeHandler(svc.Booking),
		Auth:     NewAuthHandler(rdb),
	}
}

package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"paiban/config"
	"paiban/internal/dto"
	"paiban/internal/model"
	"paiban/internal/repository"
	pkgerrors "paiban/pkg/errors"
)

// ── 预约模块业务错误 ──

var (
	ErrBookingNotFound   = errors.New("预约记录不存在")
	ErrEmployeeNotFound  = errors.New("员工不存在")
	ErrInvalidInterval   = errors.New("时段非法：须为同日内时刻且开始早于结束")
	ErrBookingConflict   = errors.New("该时段与目标资源的既有排班冲突")
	ErrInvalidTransition = errors.New("当前状态不允许此操作")
	ErrNotAssignee       = errors.New("仅当前被指派人可发起换班")
	ErrBookingUnassigned = errors.New("预约未指派资源")
)

// BookingService 预约/排班业务接口（指派引擎）
//
// 每个写操作遵循同一条主线：取记录 → 状态机校验 → 快照冲突预检 →
// 事务写入（存储层复查兜底）→ 发布变更事件。冲突预检失败快速返回，
// 权威判定以存储层为准。
type BookingService interface {
	// 创建预约（初始状态由类型与是否绑定资源推导）
	Create(ctx context.Context, orgID, callerID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	// 公开入口创建（未认证表单提交，仅能产生 open/pending 记录）
	CreateIntake(ctx context.Context, orgID string, req *dto.IntakeBookingRequest) (*dto.BookingResponse, error)
	// 获取单条预约
	Get(ctx context.Context, orgID, bookingID string) (*dto.BookingResponse, error)
	// 预约列表（筛选 + 分页）
	List(ctx context.Context, orgID string, req *dto.ListBookingsRequest) ([]dto.BookingResponse, int64, error)
	// 修改预约（部分更新；时段变更需重新过冲突检测）
	Edit(ctx context.Context, orgID, bookingID, callerID string, req *dto.EditBookingRequest) (*dto.BookingResponse, error)
	// 认领未指派预约（认领人即调用者）
	Claim(ctx context.Context, orgID, bookingID, actorResourceID string) (*dto.BookingResponse, error)
	// 改派到新资源（拖拽路径）
	Reassign(ctx context.Context, orgID, bookingID, callerID string, req *dto.ReassignBookingRequest) (*dto.BookingResponse, error)
	// 被指派人发起换班
	RequestSwap(ctx context.Context, orgID, bookingID, actorResourceID string) (*dto.BookingResponse, error)
	// 批准（pending / swap_requested → approved）
	Approve(ctx context.Context, orgID, bookingID, callerID string) (*dto.BookingResponse, error)
	// 拒绝（pending / swap_requested → declined，终态）
	Decline(ctx context.Context, orgID, bookingID, callerID string) (*dto.BookingResponse, error)
	// 删除预约（软删除，任何状态均可）
	Delete(ctx context.Context, orgID, bookingID, callerID string) error
}

// Reconciler 本地兜底对账端口（SyncService 实现）。
// 变更事件未能上流时，写入方直接对受影响的组织+日期触发对账，
// 保证本进程的日视图不会停留在旧快照上
type Reconciler interface {
	Reconcile(ctx context.Context, orgID string, date time.Time) error
}

type bookingService struct {
	repo       *repository.Repository
	publisher  ChangePublisher
	notifier   Notifier
	reconciler Reconciler
	cfg        *config.ScheduleConfig
	logger     *zap.Logger
}

// NewBookingService 创建 BookingService 实例
func NewBookingService(repo *repository.Repository, publisher ChangePublisher, notifier Notifier, reconciler Reconciler, cfg *config.ScheduleConfig, logger *zap.Logger) BookingService {
	return &bookingService{
		repo:       repo,
		publisher:  publisher,
		notifier:   notifier,
		reconciler: reconciler,
		cfg:        cfg,
		logger:     logger,
	}
}

// ════════════════════════════════════════════════════════════
// 创建
// ════════════════════════════════════════════════════════════

func (s *bookingService) Create(ctx context.Context, orgID, callerID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if !validInterval(req.StartTime, req.EndTime) {
		return nil, ErrInvalidInterval
	}
	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidInterval
	}

	// 绑定资源前校验资源存在且属于本组织
	if req.ResourceID != nil {
		if err := s.checkEmployee(ctx, orgID, *req.ResourceID); err != nil {
			return nil, err
		}
	}

	booking := &model.Booking{
		OrganizationID: orgID,
		Title:          req.Title,
		Type:           model.BookingType(req.Type),
		Date:           date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Status:         initialStatus(model.BookingType(req.Type), req.ResourceID != nil),
		ResourceID:     req.ResourceID,
		Notes:          req.Notes,
	}
	booking.CreatedBy = &callerID
	booking.UpdatedBy = &callerID

	// 乐观预检：直接指派且占用日历时先查一次快照，避免必然失败的事务
	if booking.ResourceID != nil && booking.Status.Occupies() {
		if err := s.precheck(ctx, orgID, *booking.ResourceID, date, req.StartTime, req.EndTime, ""); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Booking.CreateChecked(ctx, booking); err != nil {
		if errors.Is(err, pkgerrors.ErrScheduleConflict) {
			return nil, ErrBookingConflict
		}
		s.logger.Error("创建预约失败", zap.Error(err))
		return nil, err
	}

	s.publishChange(ctx, OpInsert, booking)
	return s.toResponse(ctx, booking), nil
}

func (s *bookingService) CreateIntake(ctx context.Context, orgID string, req *dto.IntakeBookingRequest) (*dto.BookingResponse, error) {
	if !validInterval(req.StartTime, req.EndTime) {
		return nil, ErrInvalidInterval
	}
	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidInterval
	}

	if req.ResourceID != nil {
		if err := s.checkEmployee(ctx, orgID, *req.ResourceID); err != nil {
			return nil, err
		}
	}

	// 公开入口不做隐式批准：指派了资源也只进 pending，等待审批
	status := model.StatusOpen
	if req.ResourceID != nil {
		status = model.StatusPending
	}

	booking := &model.Booking{
		OrganizationID: orgID,
		Title:          req.Title,
		Type:           model.BookingType(req.Type),
		Date:           date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Status:         status,
		ResourceID:     req.ResourceID,
		Notes:          req.Notes,
	}

	if booking.ResourceID != nil {
		if err := s.precheck(ctx, orgID, *booking.ResourceID, date, req.StartTime, req.EndTime, ""); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Booking.CreateChecked(ctx, booking); err != nil {
		if errors.Is(err, pkgerrors.ErrScheduleConflict) {
			return nil, ErrBookingConflict
		}
		s.logger.Error("公开入口创建预约失败", zap.Error(err))
		return nil, err
	}

	s.publishChange(ctx, OpInsert, booking)
	return s.toResponse(ctx, booking), nil
}

// ════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════

func (s *bookingService) Get(ctx context.Context, orgID, bookingID string) (*dto.BookingResponse, error) {
	booking, err := s.getOrgBooking(ctx, orgID, bookingID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, booking), nil
}

func (s *bookingService) List(ctx context.Context, orgID string, req *dto.ListBookingsRequest) ([]dto.BookingResponse, int64, error) {
	filter := repository.BookingFilter{ResourceID: req.ResourceID}
	if req.From != "" {
		from, err := time.Parse(model.DateLayout, req.From)
		if err != nil {
			return nil, 0, ErrInvalidInterval
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(model.DateLayout, req.To)
		if err != nil {
			return nil, 0, ErrInvalidInterval
		}
		filter.To = &to
	}
	if req.Status != "" {
		status := model.BookingStatus(req.Status)
		filter.Status = &status
	}

	bookings, total, err := s.repo.Booking.ListByOrg(ctx, orgID, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询预约列表失败", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, *toBookingResponse(&bookings[i]))
	}
	return resp, total, nil
}

// ════════════════════════════════════════════════════════════
// 修改 / 认领 / 改派
// ════════════════════════════════════════════════════════════

func (s *bookingService) Edit(ctx context.Context, orgID, bookingID, callerID string, req *dto.EditBookingRequest) (*dto.BookingResponse, error) {
	booking, err := s.getOrgBooking(ctx, orgID, bookingID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(opEdit, booking.Status) {
		return nil, ErrInvalidTransition
	}

	if req.Title != nil {
		booking.Title = *req.Title
	}
	if req.Notes != nil {
		booking.Notes = *req.Notes
	}
	if req.Date != nil {
		date, err := time.Parse(model.DateLayout, *req.Date)
		if err != nil {
			return nil, ErrInvalidInterval
		}
		booking.Date = date
	}
	if req.StartTime != nil {
		booking.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		booking.EndTime = *req.EndTime
	}
	booking.StartTime = model.NormalizeClock(booking.StartTime)
	booking.EndTime = model.NormalizeClock(booking.EndTime)
	if !validInterval(booking.StartTime, booking.EndTime) {
		return nil, ErrInvalidInterval
	}

	// 时段或日期变动且记录占用日历时重新过冲突检测，排除记录自身
	if booking.ResourceID != nil && booking.Status.Occupies() {
		if err := s.precheck(ctx, orgID, *booking.ResourceID, booking.Date, booking.StartTime, booking.EndTime, booking.BookingID); err != nil {
			return nil, err
		}
	}

	booking.UpdatedBy = &callerID
	if err := s.repo.Booking.UpdateChecked(ctx, booking); err != nil {
		if errors.Is(err, pkgerrors.ErrScheduleConflict) {
			return nil, ErrBookingConflict
		}
		s.logger.Error("修改预约失败", zap.Error(err))
		return nil, err
	}

	s.publishChange(ctx, OpUpdate, booking)
	return s.toResponse(ctx, booking), nil
}

func (s *bookingService) Claim(ctx context.Context, orgID, bookingID, actorResourceID string) (*dto.BookingResponse, error) {
	booking, err := s.getOrgBooking(ctx, orgID, bookingID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(opClaim, booking.Status) {
		return nil, ErrInvalidTransition
	}
	if err := s.checkEmployee(ctx, orgID, actorResourceID); err != nil {
		return nil, err
	}

	// 对认领人既有日程做冲突预检
	if err := s.precheck(ctx, orgID, actorResourceID, booking.Date, booking.StartTime, booking.EndTime, booking.BookingID); err != nil {
		return nil, err
	}

	booking.ResourceID = &actorResourceID
	booking.Status = model.StatusApproved
	booking.UpdatedBy = &actorResourceID
	if err := s.repo.Booking.UpdateChecked(ctx, booking); err != nil {
		if errors.Is(err, pkgerrors.ErrScheduleConflict) {
			return nil, ErrBookingConflict
		}
		s.logger.Error("认领预约失败", zap.Error(err))
		return nil, err
	}

	s.publishChange(ctx, OpUpdate, booking)
	return s.toResponse(ctx, booking), nil
}

func (s *bookingService) Reassign(ctx context.Context, orgID, bookingID, callerID string, req *dto.ReassignBookingRequest) (*dto.BookingResponse, error) {
	booking, err := s.getOrgBooking(ctx, orgID, bookingID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(opReassign, booking.Status) {
		return nil, ErrInvalidTransition
	}
	if err := s.checkEmployee(ctx, orgID, req.ResourceID); err != nil {
		return nil, err
	}

	if err := s.precheck(ctx, orgID, req.ResourceID, booking.Date, booking.StartTime, booking.EndTime, booking.BookingID); err != nil {
		return nil, err
	}

	booking.ResourceID = &req.ResourceID
	if booking.Status == model.StatusOpen {
		// 拖拽改派未指派记录是否隐式批准由策略开关决定
		if s.cfg.ReassignOpenApproves {
			booking.Status = model.StatusApproved
		} else {
			booking.Status = model.StatusPending
		}
	}
	booking.UpdatedBy = &callerID
	if err := s.repo.Booking.UpdateChecked(ctx, booking); err != nil {
		if errors.Is(err, pkgerrors.ErrScheduleConflict) {
			return nil, ErrBookingConflict
		}
		s.logger.Error("改派预约失败", zap.Error(err))
		return nil, err
	}

	s.publishChange(ctx, OpUpdate, booking)
	return s.toResponse(ctx, booking), nil
}

// ════════════════════════════════════════════════════════════
// 换班 / 审批
// ════════════════════════════════════════════════════════════

func (s *bookingService) RequestSwap(ctx context.Context, orgID, bookingID, actorResourceID string) (*dto.BookingResponse, error) {
	booking, err := s.getOrgBooking(ctx, orgID, bookingID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(opRequestSwap, booking.Status) {
		return nil, ErrInvalidTransition
	}
	if booking.ResourceID == nil {
		return nil, ErrBookingUnassigned
	}
	if !booking.AssignedTo(actorResourceID) {
		return nil, ErrNotAssignee
	}

	// 换班待决期间记录继续占用日历，无需重新过冲突检测
	booking.Status = model.StatusSwapRequested
	booking.UpdatedBy = &actorResourceID
	if err := s.repo.Booking.Update(ctx, booking); err != nil {
		s.logger.Error("发起换班失败", zap.Error(err))
		return nil, err
	}

	s.publishChange(ctx, OpUpdate, booking)
	return s.toResponse(ctx, booking), nil
}

func (s *bookingService) Approve(ctx context.Context, orgID, bookingID, callerID string) (*dto.BookingResponse, error) {
	booking, err := s.getOrgBooking(ctx, orgID, bookingID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(opApprove, booking.Status) {
		return nil, ErrInvalidTransition
	}

	booking.Status = model.StatusApproved
	booking.UpdatedBy = &callerID
	if err := s.repo.Booking.UpdateChecked(ctx, booking); err != nil {
		if errors.Is(err, pkgerrors.ErrScheduleConflict) {
			return nil, ErrBookingConflict
		}
		s.logger.Error("批准预约失败", zap.Error(err))
		return nil, err
	}

	s.publishChange(ctx, OpUpdate, booking)
	// 通知在提交之后发出，失败不回滚
	s.notifier.BookingApproved(ctx, booking)
	return s.toResponse(ctx, booking), nil
}

func (s *bookingService) Decline(ctx context.Context, orgID, bookingID, callerID string) (*dto.BookingResponse, error) {
	booking, err := s.getOrgBooking(ctx, orgID, bookingID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(opDecline, booking.Status) {
		return nil, ErrInvalidTransition
	}

	booking.Status = model.StatusDeclined
	booking.UpdatedBy = &callerID
	if err := s.repo.Booking.Update(ctx, booking); err != nil {
		s.logger.Error("拒绝预约失败", zap.Error(err))
		return nil, err
	}

	s.publishChange(ctx, OpUpdate, booking)
	s.notifier.BookingDeclined(ctx, booking)
	return s.toResponse(ctx, booking), nil
}

// ════════════════════════════════════════════════════════════
// 删除
// ════════════════════════════════════════════════════════════

func (s *bookingService) Delete(ctx context.Context, orgID, bookingID, callerID string) error {
	booking, err := s.getOrgBooking(ctx, orgID, bookingID)
	if err != nil {
		return err
	}

	if err := s.repo.Booking.Delete(ctx, bookingID, callerID); err != nil {
		s.logger.Error("删除预约失败", zap.Error(err))
		return err
	}

	s.publishChange(ctx, OpDelete, booking)
	return nil
}

// ════════════════════════════════════════════════════════════
// 内部辅助
// ════════════════════════════════════════════════════════════

// getOrgBooking 取记录并校验组织归属（跨组织一律按不存在处理）
func (s *bookingService) getOrgBooking(ctx context.Context, orgID, bookingID string) (*model.Booking, error) {
	booking, err := s.repo.Booking.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("查询预约失败", zap.Error(err))
		return nil, err
	}
	if booking.OrganizationID != orgID {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// checkEmployee 校验员工存在且属于本组织
func (s *bookingService) checkEmployee(ctx context.Context, orgID, employeeID string) error {
	employee, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return err
	}
	if employee.OrganizationID != orgID {
		return ErrEmployeeNotFound
	}
	return nil
}

// precheck 快照冲突预检：拉取目标资源当日记录并做纯函数判定
func (s *bookingService) precheck(ctx context.Context, orgID, resourceID string, date time.Time, startTime, endTime, excludeID string) error {
	snapshot, err := s.repo.Booking.ListByResourceAndDate(ctx, orgID, resourceID, date)
	if err != nil {
		s.logger.Error("拉取冲突检测快照失败", zap.Error(err))
		return err
	}
	if HasConflict(snapshot, resourceID, date, startTime, endTime, excludeID) {
		return ErrBookingConflict
	}
	return nil
}

// publishChange 写入成功后发布变更事件；失败只记日志，不影响已提交的写入。
// 发布端不可用或发布失败时退化为本地直接对账，当日快照不会永久滞留旧数据
func (s *bookingService) publishChange(ctx context.Context, op string, booking *model.Booking) {
	if s.publisher == nil {
		s.reconcileLocal(ctx, booking)
		return
	}
	if err := s.publisher.PublishChange(ctx, ChangeEvent{Op: op, Record: *booking}); err != nil {
		s.logger.Error("发布变更事件失败",
			zap.String("op", op),
			zap.String("booking_id", booking.BookingID),
			zap.Error(err))
		s.reconcileLocal(ctx, booking)
	}
}

func (s *bookingService) reconcileLocal(ctx context.Context, booking *model.Booking) {
	if s.reconciler == nil {
		return
	}
	if err := s.reconciler.Reconcile(ctx, booking.OrganizationID, booking.Date); err != nil {
		s.logger.Error("本地兜底对账失败",
			zap.String("organization_id", booking.OrganizationID),
			zap.String("date", booking.Date.Format(model.DateLayout)),
			zap.Error(err))
	}
}

// toResponse 组装响应；关联资源未预加载时补查一次
func (s *bookingService) toResponse(ctx context.Context, booking *model.Booking) *dto.BookingResponse {
	if booking.ResourceID != nil && booking.Resource == nil {
		if employee, err := s.repo.Employee.GetByID(ctx, *booking.ResourceID); err == nil {
			booking.Resource = employee
		}
	}
	return toBookingResponse(booking)
}

// toBookingResponse 模型 → 响应 DTO
func toBookingResponse(booking *model.Booking) *dto.BookingResponse {
	resp := &dto.BookingResponse{
		ID:             booking.BookingID,
		OrganizationID: booking.OrganizationID,
		Title:          booking.Title,
		Type:           string(booking.Type),
		Date:           booking.Date.Format(model.DateLayout),
		StartTime:      booking.StartTime,
		EndTime:        booking.EndTime,
		Status:         string(booking.Status),
		Notes:          booking.Notes,
		CreatedAt:      booking.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      booking.UpdatedAt.Format(time.RFC3339),
	}
	if booking.Resource != nil {
		resp.Resource = toEmployeeResponse(booking.Resource)
	}
	return resp
}

// toEmployeeResponse 员工模型 → 响应 DTO
func toEmployeeResponse(employee *model.Employee) *dto.EmployeeResponse {
	return &dto.EmployeeResponse{
		ID:         employee.EmployeeID,
		Name:       employee.Name,
		Role:       employee.Role,
		Department: employee.Department,
		AvatarURL:  employee.AvatarURL,
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"paiban/config"
	"paiban/internal/dto"
	"paiban/internal/model"
	"paiban/internal/repository"
)

// ── 测试辅助 ──

func setupTestBookingService() (BookingService, *mockBookingRepo, *recordPublisher, *recordNotifier) {
	return setupTestBookingServiceWithCfg(&config.ScheduleConfig{ReassignOpenApproves: true})
}

func setupTestBookingServiceWithCfg(cfg *config.ScheduleConfig) (BookingService, *mockBookingRepo, *recordPublisher, *recordNotifier) {
	bookingRepo := newMockBookingRepo()
	employeeRepo := newMockEmployeeRepo()
	employeeRepo.add("emp-1", "org-001", "张三")
	employeeRepo.add("emp-2", "org-001", "李四")
	employeeRepo.add("emp-9", "org-002", "王五")

	repo := &repository.Repository{
		Booking:  bookingRepo,
		Employee: employeeRepo,
	}
	pub := &recordPublisher{}
	notifier := &recordNotifier{}
	svc := NewBookingService(repo, pub, notifier, nil, cfg, zap.NewNop())
	return svc, bookingRepo, pub, notifier
}

func seedBooking(repo *mockBookingRepo, id, resourceID, date, start, end string, status model.BookingStatus) *model.Booking {
	b := makeBooking(id, resourceID, date, start, end, status)
	repo.bookings[id] = &b
	b.Version = 1
	return &b
}

// ── Create 测试 ──

func TestBookingService_Create_DirectlyAssigned(t *testing.T) {
	svc, _, pub, _ := setupTestBookingService()

	resourceID := "emp-1"
	req := &dto.CreateBookingRequest{
		Title:      "早班",
		Type:       "shift",
		Date:       "2026-09-01",
		StartTime:  "09:00",
		EndTime:    "12:00",
		ResourceID: &resourceID,
	}

	result, err := svc.Create(context.Background(), "org-001", "admin-001", req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != "approved" {
		t.Errorf("直接指派应为 approved，实际=%s", result.Status)
	}
	if len(pub.events) != 1 || pub.events[0].Op != OpInsert {
		t.Error("创建成功应发布一条 insert 变更事件")
	}
}

func TestBookingService_Create_Unassigned(t *testing.T) {
	svc, _, _, _ := setupTestBookingService()

	req := &dto.CreateBookingRequest{
		Title:     "待认领班次",
		Type:      "shift",
		Date:      "2026-09-01",
		StartTime: "09:00",
		EndTime:   "12:00",
	}

	result, err := svc.Create(context.Background(), "org-001", "admin-001", req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != "open" {
		t.Errorf("未指派应为 open，实际=%s", result.Status)
	}
}

func TestBookingService_Create_TimeOffPending(t *testing.T) {
	svc, _, _, _ := setupTestBookingService()

	resourceID := "emp-1"
	req := &dto.CreateBookingRequest{
		Title:      "年假",
		Type:       "time_off",
		Date:       "2026-09-01",
		StartTime:  "09:00",
		EndTime:    "18:00",
		ResourceID: &resourceID,
	}

	result, err := svc.Create(context.Background(), "org-001", "admin-001", req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Status != "pending" {
		t.Errorf("请假申请应为 pending，实际=%s", result.Status)
	}
}

func TestBookingService_Create_InvalidInterval(t *testing.T) {
	svc, repo, pub, _ := setupTestBookingService()

	for _, c := range []struct{ start, end string }{
		{"12:00", "09:00"}, // 起止倒置
		{"09:00", "09:00"}, // 零长度
		{"9am", "10:00"},   // 非法格式
	} {
		req := &dto.CreateBookingRequest{
			Title:     "非法时段",
			Type:      "shift",
			Date:      "2026-09-01",
			StartTime: c.start,
			EndTime:   c.end,
		}
		_, err := svc.Create(context.Background(), "org-001", "admin-001", req)
		if !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("时段 %s-%s 期望 ErrInvalidInterval，实际: %v", c.start, c.end, err)
		}
	}

	if len(repo.bookings) != 0 {
		t.Error("非法时段不应持久化任何记录")
	}
	if len(pub.events) != 0 {
		t.Error("非法时段不应发布变更事件")
	}
}

func TestBookingService_Create_Conflict(t *testing.T) {
	svc, repo, pub, _ := setupTestBookingService()
	seedBooking(repo, "bk-existing", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusApproved)

	resourceID := "emp-1"
	req := &dto.CreateBookingRequest{
		Title:      "冲突班次",
		Type:       "shift",
		Date:       "2026-09-01",
		StartTime:  "09:30",
		EndTime:    "10:30",
		ResourceID: &resourceID,
	}

	_, err := svc.Create(context.Background(), "org-001", "admin-001", req)
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("期望 ErrBookingConflict，实际: %v", err)
	}

	// 原记录不受影响
	existing := repo.bookings["bk-existing"]
	if existing.Status != model.StatusApproved || existing.StartTime != "09:00" || existing.EndTime != "10:00" {
		t.Error("冲突被拒后原记录应保持不变")
	}
	if len(repo.bookings) != 1 {
		t.Error("冲突被拒后不应新增记录")
	}
	if len(pub.events) != 0 {
		t.Error("冲突被拒后不应发布变更事件")
	}
}

func TestBookingService_Create_TouchingBoundariesAccepted(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-existing", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusApproved)

	resourceID := "emp-1"
	req := &dto.CreateBookingRequest{
		Title:      "接续班次",
		Type:       "shift",
		Date:       "2026-09-01",
		StartTime:  "10:00",
		EndTime:    "11:00",
		ResourceID: &resourceID,
	}

	if _, err := svc.Create(context.Background(), "org-001", "admin-001", req); err != nil {
		t.Fatalf("首尾相接应被接受: %v", err)
	}
}

func TestBookingService_Create_UnknownEmployee(t *testing.T) {
	svc, _, _, _ := setupTestBookingService()

	resourceID := "emp-404"
	req := &dto.CreateBookingRequest{
		Title:      "早班",
		Type:       "shift",
		Date:       "2026-09-01",
		StartTime:  "09:00",
		EndTime:    "12:00",
		ResourceID: &resourceID,
	}

	_, err := svc.Create(context.Background(), "org-001", "admin-001", req)
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("期望 ErrEmployeeNotFound，实际: %v", err)
	}
}

func TestBookingService_Create_CrossOrgEmployee(t *testing.T) {
	svc, _, _, _ := setupTestBookingService()

	// emp-9 属于 org-002
	resourceID := "emp-9"
	req := &dto.CreateBookingRequest{
		Title:      "早班",
		Type:       "shift",
		Date:       "2026-09-01",
		StartTime:  "09:00",
		EndTime:    "12:00",
		ResourceID: &resourceID,
	}

	_, err := svc.Create(context.Background(), "org-001", "admin-001", req)
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("跨组织员工应按不存在处理，实际: %v", err)
	}
}

// ── CreateIntake 测试 ──

func TestBookingService_CreateIntake_NeverApproved(t *testing.T) {
	svc, _, _, _ := setupTestBookingService()

	resourceID := "emp-1"
	req := &dto.IntakeBookingRequest{
		Title:      "外部预约",
		Type:       "appointment",
		Date:       "2026-09-01",
		StartTime:  "14:00",
		EndTime:    "15:00",
		ResourceID: &resourceID,
	}

	result, err := svc.CreateIntake(context.Background(), "org-001", req)
	if err != nil {
		t.Fatalf("CreateIntake 应成功: %v", err)
	}
	if result.Status != "pending" {
		t.Errorf("公开入口指派资源应为 pending，实际=%s", result.Status)
	}

	// 未指派 → open
	req2 := &dto.IntakeBookingRequest{
		Title:     "外部预约",
		Type:      "appointment",
		Date:      "2026-09-01",
		StartTime: "16:00",
		EndTime:   "17:00",
	}
	result2, err := svc.CreateIntake(context.Background(), "org-001", req2)
	if err != nil {
		t.Fatalf("CreateIntake 应成功: %v", err)
	}
	if result2.Status != "open" {
		t.Errorf("公开入口未指派应为 open，实际=%s", result2.Status)
	}
}

// ── Claim 测试 ──

func TestBookingService_Claim_Success(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-open", "", "2026-09-01", "09:00", "12:00", model.StatusOpen)

	result, err := svc.Claim(context.Background(), "org-001", "bk-open", "emp-1")
	if err != nil {
		t.Fatalf("Claim 应成功: %v", err)
	}
	if result.Status != "approved" {
		t.Errorf("认领后应为 approved，实际=%s", result.Status)
	}

	stored := repo.bookings["bk-open"]
	if !stored.AssignedTo("emp-1") {
		t.Error("认领后资源应绑定到认领人")
	}
}

func TestBookingService_Claim_Conflict(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-busy", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusApproved)
	seedBooking(repo, "bk-open", "", "2026-09-01", "09:30", "10:30", model.StatusOpen)

	_, err := svc.Claim(context.Background(), "org-001", "bk-open", "emp-1")
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("期望 ErrBookingConflict，实际: %v", err)
	}

	stored := repo.bookings["bk-open"]
	if stored.Status != model.StatusOpen || stored.ResourceID != nil {
		t.Error("认领失败后记录应保持 open 且未绑定资源")
	}
}

func TestBookingService_Claim_InvalidTransition(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-approved", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusApproved)

	_, err := svc.Claim(context.Background(), "org-001", "bk-approved", "emp-2")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("非 open 记录认领应返回 ErrInvalidTransition，实际: %v", err)
	}
}

// ── Edit 测试 ──

func TestBookingService_Edit_SelfExclusion(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusApproved)

	// 保持原时段重写：自身不与自己冲突
	title := "改个标题"
	result, err := svc.Edit(context.Background(), "org-001", "bk-1", "admin-001", &dto.EditBookingRequest{Title: &title})
	if err != nil {
		t.Fatalf("编辑自身时段应成功: %v", err)
	}
	if result.Title != "改个标题" {
		t.Errorf("期望标题已更新，实际=%s", result.Title)
	}
}

func TestBookingService_Edit_ConflictKeepsOriginal(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusApproved)
	seedBooking(repo, "bk-2", "emp-1", "2026-09-01", "11:00", "12:00", model.StatusApproved)

	// 把 bk-2 移到与 bk-1 重叠的时段
	start, end := "09:30", "10:30"
	_, err := svc.Edit(context.Background(), "org-001", "bk-2", "admin-001", &dto.EditBookingRequest{StartTime: &start, EndTime: &end})
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("期望 ErrBookingConflict，实际: %v", err)
	}

	stored := repo.bookings["bk-2"]
	if stored.StartTime != "11:00" || stored.EndTime != "12:00" {
		t.Error("编辑失败后记录时段应保持不变")
	}
}

func TestBookingService_Edit_StoreFailureNotReflected(t *testing.T) {
	svc, repo, pub, _ := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusApproved)
	repo.updateErr = errors.New("写入失败")

	start, end := "13:00", "14:00"
	_, err := svc.Edit(context.Background(), "org-001", "bk-1", "admin-001", &dto.EditBookingRequest{StartTime: &start, EndTime: &end})
	if err == nil {
		t.Fatal("写入失败应返回错误")
	}

	stored := repo.bookings["bk-1"]
	if stored.StartTime != "09:00" || stored.EndTime != "10:00" {
		t.Error("失败的写入不应反映到存储")
	}
	if len(pub.events) != 0 {
		t.Error("失败的写入不应发布变更事件")
	}
}

func TestBookingService_Edit_Terminal(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusDeclined)

	title := "新标题"
	_, err := svc.Edit(context.Background(), "org-001", "bk-1", "admin-001", &dto.EditBookingRequest{Title: &title})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("declined 记录编辑应返回 ErrInvalidTransition，实际: %v", err)
	}
}

func TestBookingService_Edit_TitleOnlyStoreFormatTimes(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	// 存量记录的时刻为 TIME 列文本输出格式（带秒段）
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00:00", "17:00:00", model.StatusApproved)

	title := "调整后的全天班"
	result, err := svc.Edit(context.Background(), "org-001", "bk-1", "admin-001", &dto.EditBookingRequest{Title: &title})
	if err != nil {
		t.Fatalf("仅改标题的编辑应成功: %v", err)
	}
	if result.Title != title {
		t.Errorf("标题应更新为 %q，实际=%q", title, result.Title)
	}
	if result.StartTime != "09:00" || result.EndTime != "17:00" {
		t.Errorf("时刻应归一化为 HH:MM，实际=%s-%s", result.StartTime, result.EndTime)
	}
}

func TestBookingService_Create_TouchingBoundaryStoreFormat(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-existing", "emp-1", "2026-09-01", "09:00:00", "10:00:00", model.StatusApproved)

	resourceID := "emp-1"
	req := &dto.CreateBookingRequest{
		Title:      "接续班次",
		Type:       "shift",
		Date:       "2026-09-01",
		StartTime:  "10:00",
		EndTime:    "11:00",
		ResourceID: &resourceID,
	}

	if _, err := svc.Create(context.Background(), "org-001", "admin-001", req); err != nil {
		t.Fatalf("既有记录为带秒段格式时，首尾相接仍应被接受: %v", err)
	}
}

// ── Reassign 测试 ──

func TestBookingService_Reassign_Success(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusApproved)

	result, err := svc.Reassign(context.Background(), "org-001", "bk-1", "admin-001", &dto.ReassignBookingRequest{ResourceID: "emp-2"})
	if err != nil {
		t.Fatalf("Reassign 应成功: %v", err)
	}
	if result.Status != "approved" {
		t.Errorf("改派后应保持 approved，实际=%s", result.Status)
	}
	if !repo.bookings["bk-1"].AssignedTo("emp-2") {
		t.Error("改派后资源应为新指派人")
	}
}

func TestBookingService_Reassign_ConflictKeepsPriorResource(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-busy", "emp-2", "2026-09-01", "09:00", "10:00", model.StatusApproved)
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:30", "10:30", model.StatusApproved)

	_, err := svc.Reassign(context.Background(), "org-001", "bk-1", "admin-001", &dto.ReassignBookingRequest{ResourceID: "emp-2"})
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("期望 ErrBookingConflict，实际: %v", err)
	}

	stored := repo.bookings["bk-1"]
	if !stored.AssignedTo("emp-1") || stored.Status != model.StatusApproved {
		t.Error("改派失败后记录应保持原指派与原状态")
	}
}

func TestBookingService_Reassign_OpenImplicitApprove(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-open", "", "2026-09-01", "09:00", "10:00", model.StatusOpen)

	result, err := svc.Reassign(context.Background(), "org-001", "bk-open", "admin-001", &dto.ReassignBookingRequest{ResourceID: "emp-1"})
	if err != nil {
		t.Fatalf("Reassign 应成功: %v", err)
	}
	if result.Status != "approved" {
		t.Errorf("策略开启时改派 open 记录应隐式批准，实际=%s", result.Status)
	}
}

func TestBookingService_Reassign_OpenPolicyDisabled(t *testing.T) {
	svc, repo, _, _ := setupTestBookingServiceWithCfg(&config.ScheduleConfig{ReassignOpenApproves: false})
	seedBooking(repo, "bk-open", "", "2026-09-01", "09:00", "10:00", model.StatusOpen)

	result, err := svc.Reassign(context.Background(), "org-001", "bk-open", "admin-001", &dto.ReassignBookingRequest{ResourceID: "emp-1"})
	if err != nil {
		t.Fatalf("Reassign 应成功: %v", err)
	}
	if result.Status != "pending" {
		t.Errorf("策略关闭时改派 open 记录应进入 pending，实际=%s", result.Status)
	}
}

// ── RequestSwap 测试 ──

func TestBookingService_RequestSwap_AssigneeOnly(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusApproved)

	_, err := svc.RequestSwap(context.Background(), "org-001", "bk-1", "emp-2")
	if !errors.Is(err, ErrNotAssignee) {
		t.Fatalf("非被指派人发起换班应返回 ErrNotAssignee，实际: %v", err)
	}

	result, err := svc.RequestSwap(context.Background(), "org-001", "bk-1", "emp-1")
	if err != nil {
		t.Fatalf("被指派人发起换班应成功: %v", err)
	}
	if result.Status != "swap_requested" {
		t.Errorf("期望 swap_requested，实际=%s", result.Status)
	}
}

// ── Approve / Decline 测试 ──

func TestBookingService_Approve_Notifies(t *testing.T) {
	svc, repo, _, notifier := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusPending)

	result, err := svc.Approve(context.Background(), "org-001", "bk-1", "admin-001")
	if err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if result.Status != "approved" {
		t.Errorf("期望 approved，实际=%s", result.Status)
	}
	if len(notifier.approved) != 1 || notifier.approved[0] != "bk-1" {
		t.Error("批准后应发出一条通知")
	}
}

func TestBookingService_Approve_SwapRequested(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusSwapRequested)

	result, err := svc.Approve(context.Background(), "org-001", "bk-1", "admin-001")
	if err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if result.Status != "approved" {
		t.Errorf("换班请求批准后应回到 approved，实际=%s", result.Status)
	}
}

func TestBookingService_Decline_Terminal(t *testing.T) {
	svc, repo, _, notifier := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusPending)

	result, err := svc.Decline(context.Background(), "org-001", "bk-1", "admin-001")
	if err != nil {
		t.Fatalf("Decline 应成功: %v", err)
	}
	if result.Status != "declined" {
		t.Errorf("期望 declined，实际=%s", result.Status)
	}
	if len(notifier.declined) != 1 {
		t.Error("拒绝后应发出一条通知")
	}

	// 终态：后续 approve / decline 均被拒
	if _, err := svc.Approve(context.Background(), "org-001", "bk-1", "admin-001"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("declined 后 approve 应返回 ErrInvalidTransition，实际: %v", err)
	}
	if _, err := svc.Decline(context.Background(), "org-001", "bk-1", "admin-001"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("declined 后 decline 应返回 ErrInvalidTransition，实际: %v", err)
	}
}

func TestBookingService_DeclinedFreesCalendar(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusPending)

	if _, err := svc.Decline(context.Background(), "org-001", "bk-1", "admin-001"); err != nil {
		t.Fatalf("Decline 应成功: %v", err)
	}

	// declined 不再占用日历：同时段创建应成功
	resourceID := "emp-1"
	req := &dto.CreateBookingRequest{
		Title:      "补班",
		Type:       "shift",
		Date:       "2026-09-01",
		StartTime:  "09:00",
		EndTime:    "10:00",
		ResourceID: &resourceID,
	}
	if _, err := svc.Create(context.Background(), "org-001", "admin-001", req); err != nil {
		t.Errorf("declined 记录不应阻塞同时段创建: %v", err)
	}
}

// ── Delete / Get / List 测试 ──

func TestBookingService_Delete(t *testing.T) {
	svc, repo, pub, _ := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusApproved)

	if err := svc.Delete(context.Background(), "org-001", "bk-1", "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := repo.bookings["bk-1"]; ok {
		t.Error("删除后记录不应存在")
	}
	if len(pub.events) != 1 || pub.events[0].Op != OpDelete {
		t.Error("删除成功应发布一条 delete 变更事件")
	}
}

func TestBookingService_Get_CrossOrg(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusApproved)

	_, err := svc.Get(context.Background(), "org-999", "bk-1")
	if !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("跨组织访问应按不存在处理，实际: %v", err)
	}
}

func TestBookingService_List_Filters(t *testing.T) {
	svc, repo, _, _ := setupTestBookingService()
	seedBooking(repo, "bk-1", "emp-1", "2026-09-01", "09:00", "10:00", model.StatusApproved)
	seedBooking(repo, "bk-2", "emp-2", "2026-09-02", "09:00", "10:00", model.StatusPending)
	seedBooking(repo, "bk-3", "emp-1", "2026-09-03", "09:00", "10:00", model.StatusDeclined)

	resourceID := "emp-1"
	list, total, err := svc.List(context.Background(), "org-001", &dto.ListBookingsRequest{ResourceID: &resourceID})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("期望 emp-1 的记录 2 条，实际 total=%d len=%d", total, len(list))
	}

	list, total, err = svc.List(context.Background(), "org-001", &dto.ListBookingsRequest{Status: "pending"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || list[0].ID != "bk-2" {
		t.Errorf("按状态过滤期望仅 bk-2，实际 total=%d", total)
	}
}

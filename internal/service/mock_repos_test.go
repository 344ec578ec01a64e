package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"paiban/internal/dto"
	"paiban/internal/model"
	"paiban/internal/repository"
	pkgerrors "paiban/pkg/errors"
)

// ── Mock BookingRepository ──

type mockBookingRepo struct {
	bookings map[string]*model.Booking
	seq      int

	// 错误注入：模拟存储层写入失败
	createErr error
	updateErr error
}

func newMockBookingRepo() *mockBookingRepo {
	return &mockBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (m *mockBookingRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("bk-%03d", m.seq)
}

func (m *mockBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	if m.createErr != nil {
		return m.createErr
	}
	if booking.BookingID == "" {
		booking.BookingID = m.nextID()
	}
	booking.Version = 1
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()
	m.bookings[booking.BookingID] = booking
	return nil
}

func (m *mockBookingRepo) CreateChecked(ctx context.Context, booking *model.Booking) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.hasOverlap(booking) {
		return pkgerrors.ErrScheduleConflict
	}
	return m.Create(ctx, booking)
}

// GetByID 返回副本：模拟数据库行为，调用方的修改在写回前不影响存储
func (m *mockBookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	if b, ok := m.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBookingRepo) ListByOrgAndDateRange(_ context.Context, orgID string, from, to time.Time) ([]model.Booking, error) {
	var result []model.Booking
	fromKey := from.Format(model.DateLayout)
	toKey := to.Format(model.DateLayout)
	for _, b := range m.bookings {
		key := b.DateKey()
		if b.OrganizationID == orgID && key >= fromKey && key <= toKey {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DateKey() != result[j].DateKey() {
			return result[i].DateKey() < result[j].DateKey()
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockBookingRepo) ListByResourceAndDate(_ context.Context, orgID, resourceID string, date time.Time) ([]model.Booking, error) {
	var result []model.Booking
	dateKey := date.Format(model.DateLayout)
	for _, b := range m.bookings {
		if b.OrganizationID == orgID && b.AssignedTo(resourceID) && b.DateKey() == dateKey {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockBookingRepo) ListByOrg(_ context.Context, orgID string, filter repository.BookingFilter, offset, limit int) ([]model.Booking, int64, error) {
	var result []model.Booking
	for _, b := range m.bookings {
		if b.OrganizationID != orgID {
			continue
		}
		if filter.From != nil && b.DateKey() < filter.From.Format(model.DateLayout) {
			continue
		}
		if filter.To != nil && b.DateKey() > filter.To.Format(model.DateLayout) {
			continue
		}
		if filter.ResourceID != nil && !b.AssignedTo(*filter.ResourceID) {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DateKey() != result[j].DateKey() {
			return result[i].DateKey() < result[j].DateKey()
		}
		return result[i].StartTime < result[j].StartTime
	})
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockBookingRepo) Update(_ context.Context, booking *model.Booking) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.bookings[booking.BookingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != booking.Version {
		return pkgerrors.ErrOptimisticLock
	}
	booking.Version++
	booking.UpdatedAt = time.Now()
	m.bookings[booking.BookingID] = booking
	return nil
}

func (m *mockBookingRepo) UpdateChecked(ctx context.Context, booking *model.Booking) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.hasOverlap(booking) {
		return pkgerrors.ErrScheduleConflict
	}
	return m.Update(ctx, booking)
}

func (m *mockBookingRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.bookings[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.bookings, id)
	return nil
}

// hasOverlap 复刻仓储层事务内复查语义：
// 候选占用日历时，与同资源同日其他占用记录做半开区间重叠判定。
// 数据库按 TIME 值比较，与文本格式无关，这里先归一化再比较以对齐该语义
func (m *mockBookingRepo) hasOverlap(booking *model.Booking) bool {
	if booking.ResourceID == nil || !booking.Status.Occupies() {
		return false
	}
	candStart := model.NormalizeClock(booking.StartTime)
	candEnd := model.NormalizeClock(booking.EndTime)
	for _, b := range m.bookings {
		if b.BookingID == booking.BookingID {
			continue
		}
		if !b.Status.Occupies() || !b.AssignedTo(*booking.ResourceID) {
			continue
		}
		if b.DateKey() != booking.DateKey() {
			continue
		}
		if candStart < model.NormalizeClock(b.EndTime) && candEnd > model.NormalizeClock(b.StartTime) {
			return true
		}
	}
	return false
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

func (m *mockEmployeeRepo) add(id, orgID, name string) {
	m.employees[id] = &model.Employee{
		EmployeeID:     id,
		OrganizationID: orgID,
		Name:           name,
		Role:           "staff",
		Department:     "运营部",
	}
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if e, ok := m.employees[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) ListByOrganization(_ context.Context, orgID string) ([]model.Employee, error) {
	var result []model.Employee
	for _, e := range m.employees {
		if e.OrganizationID == orgID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, nil
}

// ── 变更流 / 通知 / 推送 测试替身 ──

type recordPublisher struct {
	events []ChangeEvent
	err    error
}

func (p *recordPublisher) PublishChange(_ context.Context, event ChangeEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type recordNotifier struct {
	approved []string
	declined []string
}

func (n *recordNotifier) BookingApproved(_ context.Context, booking *model.Booking) {
	n.approved = append(n.approved, booking.BookingID)
}

func (n *recordNotifier) BookingDeclined(_ context.Context, booking *model.Booking) {
	n.declined = append(n.declined, booking.BookingID)
}

type fakeFeed struct {
	ch chan ChangeEvent
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{ch: make(chan ChangeEvent, 16)}
}

func (f *fakeFeed) Events(_ context.Context) (<-chan ChangeEvent, error) {
	return f.ch, nil
}

type broadcastRecord struct {
	OrgID  string
	Notice dto.ChangeNotice
}

type recordBroadcaster struct {
	records []broadcastRecord
}

func (b *recordBroadcaster) BroadcastToOrg(orgID string, notice dto.ChangeNotice) {
	b.records = append(b.records, broadcastRecord{OrgID: orgID, Notice: notice})
}

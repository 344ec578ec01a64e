package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paiban/internal/model"
	"paiban/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoBookings   = errors.New("该区间暂无排班记录")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel 导出面向排班管理员存档打印，按日期行 × 员工列呈现
//   - ICS 订阅面向单个员工，把已生效排班同步到个人日历
//   - 导出以内存缓冲返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportScheduleXLSX 导出区间排班为 Excel
	ExportScheduleXLSX(ctx context.Context, orgID string, from, to time.Time) (*bytes.Buffer, string, error)
	// ExportEmployeeICS 导出单个员工的排班为 iCalendar 订阅内容
	ExportEmployeeICS(ctx context.Context, orgID, employeeID string, from, to time.Time) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportScheduleXLSX — 导出区间排班为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "排班表"
//   - 列头：日期 | 各员工（姓名 (部门)）| 未指派
//   - 单元格：当日该员工的记录，一行一条「09:00-12:00 标题 [状态]」
//   - 已拒绝记录不导出

func (s *exportService) ExportScheduleXLSX(ctx context.Context, orgID string, from, to time.Time) (*bytes.Buffer, string, error) {
	if from.After(to) {
		return nil, "", ErrInvalidDateRange
	}

	employees, err := s.repo.Employee.ListByOrganization(ctx, orgID)
	if err != nil {
		s.logger.Error("查询组织花名册失败", zap.Error(err))
		return nil, "", err
	}

	bookings, err := s.repo.Booking.ListByOrgAndDateRange(ctx, orgID, from, to)
	if err != nil {
		s.logger.Error("查询区间排班失败", zap.Error(err))
		return nil, "", err
	}
	if len(bookings) == 0 {
		return nil, "", ErrExportNoBookings
	}

	// 索引: "date|employeeID" → 单元格文本（未指派归入空 employeeID 桶）
	cellIndex := make(map[string]string)
	for i := range bookings {
		b := &bookings[i]
		if b.Status == model.StatusDeclined {
			continue
		}
		colID := ""
		if b.ResourceID != nil {
			colID = *b.ResourceID
		}
		key := b.DateKey() + "|" + colID
		line := fmt.Sprintf("%s-%s %s [%s]", b.StartTime, b.EndTime, b.Title, b.Status)
		if cellIndex[key] != "" {
			cellIndex[key] += "\n"
		}
		cellIndex[key] += line
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "排班表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽：日期列 + 员工列 + 未指派列
	f.SetColWidth(sheetName, "A", "A", 12)
	lastCol, _ := excelize.ColumnNumberToName(len(employees) + 2)
	f.SetColWidth(sheetName, "B", lastCol, 26)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})

	// 表头
	f.SetCellValue(sheetName, "A1", "日期")
	for i := range employees {
		col, _ := excelize.ColumnNumberToName(2 + i)
		header := employees[i].Name
		if employees[i].Department != "" {
			header += " (" + employees[i].Department + ")"
		}
		f.SetCellValue(sheetName, col+"1", header)
	}
	openCol, _ := excelize.ColumnNumberToName(len(employees) + 2)
	f.SetCellValue(sheetName, openCol+"1", "未指派")
	f.SetCellStyle(sheetName, "A1", openCol+"1", headerStyle)

	// 数据行：一天一行
	row := 2
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		dateKey := day.Format(model.DateLayout)
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), dateKey)
		for i := range employees {
			col, _ := excelize.ColumnNumberToName(2 + i)
			if text, ok := cellIndex[dateKey+"|"+employees[i].EmployeeID]; ok {
				f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), text)
			}
		}
		if text, ok := cellIndex[dateKey+"|"]; ok {
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", openCol, row), text)
		}
		row++
	}
	f.SetCellStyle(sheetName, "A2", fmt.Sprintf("%s%d", openCol, row-1), wrapStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("排班表_%s_%s.xlsx", from.Format(model.DateLayout), to.Format(model.DateLayout))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportEmployeeICS — 导出员工排班为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 仅导出已生效（approved / swap_requested）的记录：
// pending 尚未确认、open 未指派、declined 已作废，均不进入个人日历

func (s *exportService) ExportEmployeeICS(ctx context.Context, orgID, employeeID string, from, to time.Time) (string, error) {
	if from.After(to) {
		return "", ErrInvalidDateRange
	}

	employee, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return "", err
	}
	if employee.OrganizationID != orgID {
		return "", ErrEmployeeNotFound
	}

	bookings, err := s.repo.Booking.ListByOrgAndDateRange(ctx, orgID, from, to)
	if err != nil {
		s.logger.Error("查询区间排班失败", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//paiban//schedule//CN")

	now := time.Now().UTC()
	for i := range bookings {
		b := &bookings[i]
		if !b.AssignedTo(employeeID) {
			continue
		}
		if b.Status != model.StatusApproved && b.Status != model.StatusSwapRequested {
			continue
		}

		start, err := eventTime(b.Date, b.StartTime)
		if err != nil {
			continue
		}
		end, err := eventTime(b.Date, b.EndTime)
		if err != nil {
			continue
		}

		event := cal.AddEvent(b.BookingID + "@paiban")
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(b.Title)
		if b.Notes != "" {
			event.SetDescription(b.Notes)
		}
	}

	return cal.Serialize(), nil
}

// eventTime 把日期与当日时刻合成本地时间点
func eventTime(date time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse(model.TimeLayout, model.NormalizeClock(hhmm))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.Local), nil
}

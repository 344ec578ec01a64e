package model

// Employee 员工花名册表 — 对应 employees
//
// 花名册由外部系统维护（入职问卷 / 人事模块），本服务只读；
// 这里仅保留排班视图与冲突检测所需的字段。
type Employee struct {
	EmployeeID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"employee_id"`
	OrganizationID string `gorm:"type:uuid;not null;index"                       json:"organization_id"`
	Name           string `gorm:"type:varchar(100);not null"                     json:"name"`
	Role           string `gorm:"type:varchar(50)"                               json:"role"`
	Department     string `gorm:"type:varchar(100)"                              json:"department"`
	AvatarURL      string `gorm:"type:varchar(500)"                              json:"avatar_url,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

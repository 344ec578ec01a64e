package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrScheduleConflict 存储层冲突：写入时段与既有占用记录重叠
// 由仓储层事务内复查或数据库排它约束（SQLSTATE 23P01）触发
var ErrScheduleConflict = errors.New("该时段与既有排班重叠")

package service

import "paiban/internal/model"

// bookingOp 状态机操作
type bookingOp string

const (
	opEdit        bookingOp = "edit"
	opClaim       bookingOp = "claim"
	opReassign    bookingOp = "reassign"
	opRequestSwap bookingOp = "request_swap"
	opApprove     bookingOp = "approve"
	opDecline     bookingOp = "decline"
)

// allowedFrom 状态迁移表：操作 → 允许的起始状态
//
// 所有状态判断集中于此，业务代码不做零散的状态字符串比较。
// declined 为终态，不出现在任何表项中；delete 不是状态迁移，
// 任何状态（含终态）均可删除。
var allowedFrom = map[bookingOp][]model.BookingStatus{
	opClaim:       {model.StatusOpen},
	opReassign:    {model.StatusOpen, model.StatusApproved},
	opRequestSwap: {model.StatusApproved},
	opApprove:     {model.StatusPending, model.StatusSwapRequested},
	opDecline:     {model.StatusPending, model.StatusSwapRequested},
	opEdit: {
		model.StatusOpen,
		model.StatusPending,
		model.StatusApproved,
		model.StatusSwapRequested,
	},
}

// transitionAllowed 判断操作在当前状态下是否合法
func transitionAllowed(op bookingOp, from model.BookingStatus) bool {
	for _, s := range allowedFrom[op] {
		if s == from {
			return true
		}
	}
	return false
}

// initialStatus 创建时的初始状态：
// 未绑定资源 → open；请假申请 → pending；直接指派 → approved
func initialStatus(t model.BookingType, hasResource bool) model.BookingStatus {
	if !hasResource {
		return model.StatusOpen
	}
	if t == model.TypeTimeOff {
		return model.StatusPending
	}
	return model.StatusApproved
}

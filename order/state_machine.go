package order

import (
	"fmt"
)

// StateTransition 状态转换
type StateTransition struct {
	From Status
	To   Status
}

// StateMachine 订单状态机：校验生命周期转换是否合法。
// 状态只朝终态单向推进，终态不可再转换。
type StateMachine struct {
	transitions map[StateTransition]bool
}

// Transitions 是全局共享的状态机实例（表是只读的，可并发使用）。
var Transitions = NewStateMachine()

// NewStateMachine 创建新的状态机
func NewStateMachine() *StateMachine {
	sm := &StateMachine{
		transitions: make(map[StateTransition]bool),
	}
	sm.initializeTransitions()
	return sm
}

// initializeTransitions 初始化所有合法的状态转换
func (sm *StateMachine) initializeTransitions() {
	legalTransitions := []StateTransition{
		// 从PENDING：引擎接单或接单失败
		{StatusPending, StatusActive},
		{StatusPending, StatusFailed},

		// 从ACTIVE：各 TIF 策略的出口
		{StatusActive, StatusFilled},
		{StatusActive, StatusPartiallyFilled}, // 仅 IOC
		{StatusActive, StatusCanceled},
		{StatusActive, StatusExpired}, // 仅 GTT
		{StatusActive, StatusFailed},

		// 终态不能转换（FILLED, PARTIALLY_FILLED, CANCELED, EXPIRED, FAILED）
	}

	for _, t := range legalTransitions {
		sm.transitions[t] = true
	}
}

// Validate 验证状态转换是否合法
func (sm *StateMachine) Validate(from, to Status) error {
	// 相同状态允许（幂等性）
	if from == to {
		return nil
	}

	transition := StateTransition{From: from, To: to}
	if !sm.transitions[transition] {
		return fmt.Errorf("illegal state transition: %s -> %s", from, to)
	}

	return nil
}

// Allowed 返回当前状态所有合法的目标状态
func (sm *StateMachine) Allowed(current Status) []Status {
	allowed := make([]Status, 0)
	for transition := range sm.transitions {
		if transition.From == current {
			allowed = append(allowed, transition.To)
		}
	}
	return allowed
}

// IsTerminal 判断是否是终态
func (sm *StateMachine) IsTerminal(status Status) bool {
	switch status {
	case StatusFilled, StatusPartiallyFilled, StatusCanceled, StatusExpired, StatusFailed:
		return true
	default:
		return false
	}
}

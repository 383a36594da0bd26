package queue

import (
	"encoding/json"

	"github.com/weipos/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderClosedNotify 关单通知任务
	TaskOrderClosedNotify = constants.TaskOrderClosedNotify
	// TaskReversalAudit 冲正对账任务
	TaskReversalAudit = constants.TaskReversalAudit
)

// OrderClosedNotifyPayload 关单通知任务载荷
type OrderClosedNotifyPayload struct {
	TenantID uint `json:"tenant_id"`
	OrderID  uint `json:"order_id"`
}

// ReversalAuditPayload 冲正对账任务载荷
type ReversalAuditPayload struct {
	TenantID uint   `json:"tenant_id"`
	OrderID  uint   `json:"order_id"`
	Reason   string `json:"reason"`
}

// NewOrderClosedNotifyTask 创建关单通知任务
func NewOrderClosedNotifyTask(payload OrderClosedNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderClosedNotify, body), nil
}

// NewReversalAuditTask 创建冲正对账任务
func NewReversalAuditTask(payload ReversalAuditPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReversalAudit, body), nil
}

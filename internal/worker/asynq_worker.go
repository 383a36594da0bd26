package worker

import (
	"context"
	"encoding/json"

	"github.com/weipos/internal/constants"
	"github.com/weipos/internal/logger"
	"github.com/weipos/internal/provider"
	"github.com/weipos/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderClosedNotify, c.handleOrderClosedNotify)
	mux.HandleFunc(queue.TaskReversalAudit, c.handleReversalAudit)
}

func (c *Consumer) handleOrderClosedNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_closed_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderClosedNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_closed_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_closed_notify_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_closed_notify_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_closed_notify_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	logger.Infow("worker_order_closed_notify",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"tenant_id", order.TenantID,
		"total", order.TotalAmount.String(),
	)
	return nil
}

func (c *Consumer) handleReversalAudit(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_reversal_audit_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReversalAuditPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_reversal_audit_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_reversal_audit_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}

	// 复查冲正结果，写一条对账日志；有失败步骤时便于人工核对
	events, _, err := c.OrderEventRepo.ListByOrder(payload.OrderID, 1, 50)
	if err != nil {
		logger.Warnw("worker_reversal_audit_fetch_events_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	failedSteps := 0
	for _, event := range events {
		if event.EventType == constants.EventReversalFailed {
			failedSteps++
		}
	}
	if failedSteps > 0 {
		logger.Warnw("worker_reversal_audit_found_failures",
			"order_id", payload.OrderID,
			"reason", payload.Reason,
			"failed_steps", failedSteps,
		)
		return nil
	}
	logger.Infow("worker_reversal_audit_clean",
		"order_id", payload.OrderID,
		"reason", payload.Reason,
	)
	return nil
}

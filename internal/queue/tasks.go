package queue

import (
	"encoding/json"

	"github.com/settle-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPaymentNotify 支付/退款通知任务
	TaskPaymentNotify = constants.TaskPaymentNotify
)

// PaymentNotifyPayload 支付通知任务载荷
type PaymentNotifyPayload struct {
	Idx   uint64 `json:"idx"`
	Event string `json:"event"` // paid / refunded
}

// NewPaymentNotifyTask 创建支付通知任务
func NewPaymentNotifyTask(payload PaymentNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentNotify, body), nil
}

package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/settle-next/internal/constants"
	"github.com/settle-next/internal/logger"
	"github.com/settle-next/internal/provider"
	"github.com/settle-next/internal/queue"

	"github.com/hibiken/asynq"
)

const notifyTimeout = 10 * time.Second

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container

	httpClient *http.Client
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container:  c,
		httpClient: &http.Client{Timeout: notifyTimeout},
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPaymentNotify, c.handlePaymentNotify)
}

// paymentNotifyBody 回调请求体
type paymentNotifyBody struct {
	Event   string      `json:"event"`
	Idx     uint64      `json:"index"`
	Payment interface{} `json:"payment"`
}

func (c *Consumer) handlePaymentNotify(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PaymentNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_notify_unmarshal_failed", "error", err)
		return err
	}

	notifyURL, err := c.SettingRepo.Get(constants.SettingNotifyURL)
	if err != nil {
		logger.Warnw("worker_payment_notify_load_url_failed", "idx", payload.Idx, "error", err)
		return err
	}
	notifyURL = strings.TrimSpace(notifyURL)
	if notifyURL == "" {
		logger.Debugw("worker_payment_notify_skip_no_url", "idx", payload.Idx)
		return nil
	}

	payment, err := c.PaymentRepo.GetByIdx(payload.Idx)
	if err != nil {
		logger.Warnw("worker_payment_notify_fetch_failed", "idx", payload.Idx, "error", err)
		return err
	}
	if payment == nil {
		logger.Debugw("worker_payment_notify_skip_not_found", "idx", payload.Idx)
		return nil
	}

	body, err := json.Marshal(paymentNotifyBody{
		Event:   payload.Event,
		Idx:     payload.Idx,
		Payment: payment,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, notifyURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warnw("worker_payment_notify_request_failed", "idx", payload.Idx, "error", err)
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warnw("worker_payment_notify_bad_status", "idx", payload.Idx, "status", resp.StatusCode)
		// 非 2xx 交由 asynq 按退避策略重试
		return fmt.Errorf("notify endpoint returned %d", resp.StatusCode)
	}
	logger.Debugw("worker_payment_notify_delivered", "idx", payload.Idx, "event", payload.Event)
	return nil
}

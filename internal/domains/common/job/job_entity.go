package job

import (
	"encoding/json"
	"fmt"
)

// ActionOrderAlertMail 订单状态提醒邮件
const ActionOrderAlertMail = "order_alert_mail"

// Job 标准 Job 结构
type Job struct {
	Payload *JobPayload `json:"payload"`
}

// JobPayload Job 负载
type JobPayload struct {
	Data *JobPayloadData `json:"data"`
}

// JobPayloadData Job 数据
type JobPayloadData struct {
	// 元信息
	RequestID  string `json:"request_id"`  // 请求 ID（TraceID）
	ActionType string `json:"action_type"` // 动作类型（路由键）
	ID         string `json:"id"`          // 业务 ID（订单 ID）

	// 业务数据
	Data json.RawMessage `json:"data"`
}

// Meta 元数据
type Meta struct {
	RequestID  string `json:"request_id"`
	ActionType string `json:"action_type"`
	ID         string `json:"id"`
}

// New 构造标准 Job
func New(requestID, actionType, id string, data interface{}) (*Job, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal job data failed: %w", err)
	}
	return &Job{
		Payload: &JobPayload{
			Data: &JobPayloadData{
				RequestID:  requestID,
				ActionType: actionType,
				ID:         id,
				Data:       raw,
			},
		},
	}, nil
}

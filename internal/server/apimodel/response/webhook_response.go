package response

import (
	"encoding/json"
	"time"

	"oip/dpnotify/internal/business/alert"
	"oip/dpnotify/internal/entity"
)

// WebhookResponse 推送处理结果（DTO）
type WebhookResponse struct {
	OrderID       string   `json:"order_id"`
	Outcome       string   `json:"outcome" example:"Dispatched"`
	ChangedFields []string `json:"changed_fields,omitempty"`
	Recipients    []string `json:"recipients,omitempty"`
}

// NotificationResponse 通知记录（DTO）
type NotificationResponse struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	TransitionKey string    `json:"transition_key"`
	Fields        []string  `json:"fields"`
	Recipients    []string  `json:"recipients"`
	Subject       string    `json:"subject"`
	Status        string    `json:"status"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FromOutcome 从处理结果转换为响应 DTO
func FromOutcome(orderID string, out *alert.Outcome) *WebhookResponse {
	resp := &WebhookResponse{
		OrderID: orderID,
		Outcome: out.Kind.String(),
	}
	for _, f := range out.ChangedFields {
		resp.ChangedFields = append(resp.ChangedFields, f.Key())
	}
	resp.Recipients = out.Recipients
	return resp
}

// FromNotificationEntities 从实体转换为响应 DTO
func FromNotificationEntities(list []*entity.Notification) []*NotificationResponse {
	out := make([]*NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, fromNotificationEntity(n))
	}
	return out
}

func fromNotificationEntity(n *entity.Notification) *NotificationResponse {
	resp := &NotificationResponse{
		ID:            n.ID,
		OrderID:       n.OrderID,
		TransitionKey: n.TransitionKey,
		Fields:        []string{},
		Recipients:    []string{},
		Subject:       n.Subject,
		Status:        n.Status,
		ErrorMessage:  n.ErrorMessage,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
	}
	if len(n.Fields) > 0 {
		_ = json.Unmarshal(n.Fields, &resp.Fields)
	}
	if len(n.Recipients) > 0 {
		_ = json.Unmarshal(n.Recipients, &resp.Recipients)
	}
	return resp
}

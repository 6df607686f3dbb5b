package response

import (
	"oip/dpnotify/internal/domains/common/job"
	"oip/dpnotify/pkg/errorutil"
)

const (
	MailStatusSent   = "SENT"
	MailStatusFailed = "FAILED"
)

// MailResult 邮件投递结果
type MailResult struct {
	OrderID string           `json:"order_id"`
	Status  string           `json:"status"`
	Error   *errorutil.Error `json:"error,omitempty"`
}

// NewMailResult 创建邮件投递结果
func NewMailResult() *MailResult {
	return &MailResult{}
}

// Set 实现 ResultI 接口
func (r *MailResult) Set(meta *job.Meta, err error) {
	r.OrderID = meta.ID
	if err != nil {
		r.Status = MailStatusFailed
		r.Error = errorutil.Wrap(err)
		return
	}
	r.Status = MailStatusSent
}

// GetStatus 实现 ResultI 接口
func (r *MailResult) GetStatus() string {
	return r.Status
}

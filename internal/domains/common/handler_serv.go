package common

import (
	"context"
	"encoding/json"

	"oip/dpnotify/internal/business/alert"
	"oip/dpnotify/internal/domains/common/job"
	"oip/dpnotify/internal/domains/common/response"
)

// MailSender 邮件投递服务
type MailSender interface {
	Deliver(ctx context.Context, n *alert.Notification) error
}

// Services Handler 依赖的业务服务
type Services struct {
	Mail MailSender
}

// HandlerServProc Handler 构造函数类型
type HandlerServProc func(ctx context.Context, meta *job.Meta, payload json.RawMessage, svc *Services) (HandlerServ, error)

// HandlerServ Handler 接口
type HandlerServ interface {
	GetProcess() *response.Response
}

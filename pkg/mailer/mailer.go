package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"oip/dpnotify/pkg/errorutil"
	"oip/dpnotify/pkg/logger"
)

var (
	// ErrNoRecipients 收件人为空
	ErrNoRecipients = errors.New("mail has no recipients")
	// ErrMailerDisabled 未配置 SendGrid，邮件未发送
	ErrMailerDisabled = errors.New("mailer disabled")
)

// Message 纯文本邮件
type Message struct {
	To      []string
	Subject string
	Text    string
}

// Mailer 邮件发送接口
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// sendClient SendGrid 客户端（便于测试替换）
type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer SendGrid v3 实现，每封邮件只发送一次，不重试
type SendGridMailer struct {
	client  sendClient
	from    string
	timeout time.Duration
}

// New 创建 Mailer，apiKey 为空时返回只记录日志的实现（Send 返回 ErrMailerDisabled）
func New(apiKey, from string, timeout time.Duration, log logger.Logger) Mailer {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &noopMailer{logger: log}
	}
	return NewSendGrid(sendgrid.NewSendClient(apiKey), from, timeout)
}

// NewSendGrid 使用指定客户端创建 SendGridMailer
func NewSendGrid(client sendClient, from string, timeout time.Duration) *SendGridMailer {
	return &SendGridMailer{
		client:  client,
		from:    strings.TrimSpace(from),
		timeout: timeout,
	}
}

// Send 发送邮件
func (m *SendGridMailer) Send(ctx context.Context, msg *Message) error {
	if msg == nil || len(msg.To) == 0 {
		return errorutil.NonRetriable(ErrNoRecipients.Error()).WithCause(ErrNoRecipients)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	resp, err := m.client.SendWithContext(ctx, BuildMessage(m.from, msg))
	if err != nil {
		return errorutil.Retriable("sendgrid request failed").WithCause(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorutil.Upstream(resp.StatusCode,
			fmt.Sprintf("sendgrid returned status %d: %s", resp.StatusCode, truncate(resp.Body, 256)))
	}
	return nil
}

// BuildMessage 构造 SendGrid v3 请求体：{to, from, subject, text}
func BuildMessage(from string, msg *Message) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail("", from))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	for _, addr := range msg.To {
		p.AddTos(mail.NewEmail("", addr))
	}
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/plain", msg.Text))
	return m
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// noopMailer 未配置 API Key 时使用
type noopMailer struct {
	logger logger.Logger
}

func (n *noopMailer) Send(ctx context.Context, msg *Message) error {
	n.logger.Warnf(ctx, "[Mailer] SendGrid not configured, skip mail %q to %v", msg.Subject, msg.To)
	return errorutil.NonRetriable(ErrMailerDisabled.Error()).WithCause(ErrMailerDisabled)
}

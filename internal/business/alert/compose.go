package alert

import (
	"fmt"
	"strings"
)

const notAvailable = "N/A"

// RecipientBook 每个字段对应的收件人列表
type RecipientBook [FieldCount][]string

// NewRecipientBook 从逗号分隔的配置串构造收件人表
func NewRecipientBook(qa, modification, packing string) RecipientBook {
	return RecipientBook{
		ParseAddressList(qa),
		ParseAddressList(modification),
		ParseAddressList(packing),
	}
}

// ParseAddressList 解析逗号分隔的地址串（去空白，丢弃空项）
func ParseAddressList(raw string) []string {
	addrs := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

// Recipients 合并变化字段的收件人，按字段优先级和列表顺序去重
func (b RecipientBook) Recipients(changed []Field) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, f := range changed {
		if !f.valid() {
			continue
		}
		for _, addr := range b[f] {
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			out = append(out, addr)
		}
	}
	return out
}

var subjectTemplates = [FieldCount]string{
	"🔍 QA Double Check marked Done for Order #%s",
	"✏️ Modification Status marked Done for Order #%s",
	"📦 Packing Status marked Done for Order #%s",
}

// Subject 邮件标题，多个字段同时变化时只取优先级最高的
func Subject(orderID string, changed []Field) string {
	for _, f := range AllFields() {
		if containsField(changed, f) {
			return fmt.Sprintf(subjectTemplates[f], orderID)
		}
	}
	return fmt.Sprintf("📋 Order #%s Update", orderID)
}

// Body 邮件正文
func Body(s *OrderSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer: %s\n", orNA(s.CustomerName))
	fmt.Fprintf(&b, "Status: %s\n", orNA(s.OrderStatus))
	fmt.Fprintf(&b, "Payment: %s\n", orNA(s.PaymentStatus))
	fmt.Fprintf(&b, "Requested Delivery: %s\n", orNA(s.RequestedDeliveryDate))
	for _, f := range AllFields() {
		fmt.Fprintf(&b, "%s: %s\n", f.Label(), orNA(s.Fields.Get(f)))
	}
	b.WriteString("\n")

	if len(s.Lines) == 0 {
		b.WriteString("No line items.")
		return b.String()
	}

	lines := make([]string, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, fmt.Sprintf("%sx %s @ $%s each = $%s",
			orNA(l.Quantity), orNA(l.ItemName), orNA(l.UnitPrice), orNA(l.LineTotal)))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func orNA(v string) string {
	if v == "" {
		return notAvailable
	}
	return v
}

func containsField(fields []Field, target Field) bool {
	for _, f := range fields {
		if f == target {
			return true
		}
	}
	return false
}

package alert

// OrderSnapshot 上游推送的订单完整状态
type OrderSnapshot struct {
	ID     string
	Fields FieldValues

	// 以下字段仅用于邮件正文
	OrderStatus           string
	PaymentStatus         string
	RequestedDeliveryDate string
	CustomerName          string
	Lines                 []OrderLine
}

// OrderLine 订单行，数值按上游原样保留
type OrderLine struct {
	Quantity  string
	ItemName  string
	UnitPrice string
	LineTotal string
}

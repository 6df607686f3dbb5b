package request

// WebhookRequest 订单变更推送
type WebhookRequest struct {
	ResourceType string     `json:"resource_type" binding:"required,eq=order" example:"order"`
	Data         *OrderData `json:"data" binding:"required"`
}

// OrderData 订单完整状态
type OrderData struct {
	ID                    OrderID      `json:"id" binding:"required" example:"100234"`
	RefField1             Scalar       `json:"ref_field_1" example:"Done"` // QA Double Check
	RefField2             Scalar       `json:"ref_field_2" example:"Pending"` // Modification Status
	RefField3             Scalar       `json:"ref_field_3"`                   // Packing Status
	OrderStatus           Scalar       `json:"order_status" example:"open"`
	PaymentStatus         Scalar       `json:"payment_status" example:"paid"`
	RequestedDeliveryDate Scalar       `json:"requested_delivery_date" example:"2024-05-01"`
	Destination           *Destination `json:"destination"`
	OrderLines            []*OrderLine `json:"order_lines"`
}

// Destination 收货方
type Destination struct {
	Name Scalar `json:"name" example:"Jane Doe"`
}

// OrderLine 订单行
type OrderLine struct {
	OrderQty       Scalar `json:"order_qty" example:"2"`
	ItemName       Scalar `json:"item_name" example:"Widget"`
	UnitPrice      Scalar `json:"unit_price" example:"3.50"`
	LineTotalPrice Scalar `json:"line_total_price" example:"7.00"`
}

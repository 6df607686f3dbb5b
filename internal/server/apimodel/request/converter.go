package request

import "oip/dpnotify/internal/business/alert"

// ToSnapshot 将 Request DTO 转换为订单快照
func (r *WebhookRequest) ToSnapshot() *alert.OrderSnapshot {
	d := r.Data
	snap := &alert.OrderSnapshot{
		ID: d.ID.Trimmed(),
		Fields: alert.FieldValues{
			d.RefField1.String(),
			d.RefField2.String(),
			d.RefField3.String(),
		},
		OrderStatus:           d.OrderStatus.String(),
		PaymentStatus:         d.PaymentStatus.String(),
		RequestedDeliveryDate: d.RequestedDeliveryDate.String(),
		Lines:                 toOrderLines(d.OrderLines),
	}
	if d.Destination != nil {
		snap.CustomerName = d.Destination.Name.String()
	}
	return snap
}

func toOrderLines(dtos []*OrderLine) []alert.OrderLine {
	lines := make([]alert.OrderLine, 0, len(dtos))
	for _, dto := range dtos {
		if dto == nil {
			continue
		}
		lines = append(lines, alert.OrderLine{
			Quantity:  dto.OrderQty.String(),
			ItemName:  dto.ItemName.String(),
			UnitPrice: dto.UnitPrice.String(),
			LineTotal: dto.LineTotalPrice.String(),
		})
	}
	return lines
}

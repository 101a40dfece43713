package dto

import (
	"time"

	"github.com/magnate-systems/picking-api/internal/services"
)

// OrderItemDTO represents one line item of an upstream order
type OrderItemDTO struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	ScanCode  string `json:"scan_code"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

// OrderDTO represents an upstream order in API responses
type OrderDTO struct {
	ID            int64          `json:"id"`
	Number        string         `json:"number"`
	CustomerName  string         `json:"customer_name"`
	Total         string         `json:"total"`
	Status        string         `json:"status"`
	PickingStatus string         `json:"picking_status,omitempty"`
	Items         []OrderItemDTO `json:"items,omitempty"`
}

// QRLabelDTO is the label payload for a picked order
type QRLabelDTO struct {
	OrderID      int64      `json:"order_id"`
	OrderNumber  string     `json:"order_number"`
	CustomerName string     `json:"customer_name"`
	Total        string     `json:"total"`
	FinishedAt   *time.Time `json:"finished_at"`
}

// ToOrderSummaryDTO converts an annotated order for list responses
func ToOrderSummaryDTO(summary services.OrderSummary) OrderDTO {
	return OrderDTO{
		ID:            summary.Order.ID,
		Number:        summary.Order.Number,
		CustomerName:  summary.Order.CustomerName(),
		Total:         summary.Order.Total,
		Status:        summary.Order.Status,
		PickingStatus: summary.PickingStatus,
	}
}

// ToOrderDetailDTO converts an order with resolved products for detail responses
func ToOrderDetailDTO(detail services.OrderDetail) OrderDTO {
	items := make([]OrderItemDTO, 0, len(detail.Order.LineItems))
	for _, item := range detail.Order.LineItems {
		dto := OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			ScanCode:  item.SKU,
			Quantity:  item.Quantity,
		}
		if product, ok := detail.Products[item.ProductID]; ok {
			dto.ImageURL = product.ImageURL
		}
		items = append(items, dto)
	}

	return OrderDTO{
		ID:           detail.Order.ID,
		Number:       detail.Order.Number,
		CustomerName: detail.Order.CustomerName(),
		Total:        detail.Order.Total,
		Status:       detail.Order.Status,
		Items:        items,
	}
}

// ToQRLabelDTO converts a label payload to DTO
func ToQRLabelDTO(label services.QRLabel) QRLabelDTO {
	return QRLabelDTO{
		OrderID:      label.OrderID,
		OrderNumber:  label.OrderNumber,
		CustomerName: label.CustomerName,
		Total:        label.Total,
		FinishedAt:   label.FinishedAt,
	}
}

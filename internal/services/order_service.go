package services

import (
	"fmt"
	"time"

	"github.com/magnate-systems/picking-api/internal/models"
	"github.com/magnate-systems/picking-api/internal/repository"
	"github.com/magnate-systems/picking-api/internal/woocommerce"
)

// OrderSummary is an upstream order annotated with local picking state.
type OrderSummary struct {
	Order         woocommerce.Order
	PickingStatus string
}

// OrderDetail is one order with product metadata resolved per line item.
type OrderDetail struct {
	Order    woocommerce.Order
	Products map[int64]*woocommerce.Product
}

// QRLabel is the label payload printed for a picked order.
type QRLabel struct {
	OrderID      int64      `json:"order_id"`
	OrderNumber  string     `json:"order_number"`
	CustomerName string     `json:"customer_name"`
	Total        string     `json:"total"`
	FinishedAt   *time.Time `json:"finished_at"`
}

// OrderService joins the upstream catalog with local session state. The
// upstream is best-effort: a fetch failure degrades to an empty list rather
// than an error.
type OrderService struct {
	orderSource OrderSource
	sessionRepo repository.SessionRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(orderSource OrderSource, sessionRepo repository.SessionRepository) *OrderService {
	return &OrderService{orderSource: orderSource, sessionRepo: sessionRepo}
}

// List returns the open upstream orders annotated with their local picking
// status: "available", "in_progress" or "finished".
func (s *OrderService) List() ([]OrderSummary, error) {
	orders := s.orderSource.FetchOpenOrders()

	summaries := make([]OrderSummary, 0, len(orders))
	for _, order := range orders {
		status, err := s.pickingStatus(order.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, OrderSummary{Order: order, PickingStatus: status})
	}
	return summaries, nil
}

// Get returns one order with its product metadata resolved.
func (s *OrderService) Get(orderID int64) (*OrderDetail, error) {
	order, ok := s.orderSource.FetchOrder(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}

	products := make(map[int64]*woocommerce.Product, len(order.LineItems))
	for _, item := range order.LineItems {
		if product := s.orderSource.FetchProductDetails(item.ProductID); product != nil {
			products[item.ProductID] = product
		}
	}
	return &OrderDetail{Order: *order, Products: products}, nil
}

// Label builds the QR label payload for an order, including the completion
// timestamp of its most recent finished session, if any.
func (s *OrderService) Label(orderID int64) (*QRLabel, error) {
	order, ok := s.orderSource.FetchOrder(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}

	label := &QRLabel{
		OrderID:      order.ID,
		OrderNumber:  order.Number,
		CustomerName: order.CustomerName(),
		Total:        order.Total,
	}

	sessions, err := s.sessionRepo.ListByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, session := range sessions {
		if session.Status == models.SessionFinished && session.FinishedAt != nil {
			if label.FinishedAt == nil || session.FinishedAt.After(*label.FinishedAt) {
				at := *session.FinishedAt
				label.FinishedAt = &at
			}
		}
	}
	return label, nil
}

func (s *OrderService) pickingStatus(orderID int64) (string, error) {
	sessions, err := s.sessionRepo.ListByOrderID(orderID)
	if err != nil {
		return "", fmt.Errorf("failed to list sessions: %w", err)
	}

	status := "available"
	for _, session := range sessions {
		if session.Status == models.SessionInProgress {
			return "in_progress", nil
		}
		if session.Status == models.SessionFinished {
			status = "finished"
		}
	}
	return status, nil
}

package woocommerce

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/magnate-systems/picking-api/internal/config"
	"github.com/magnate-systems/picking-api/internal/logging"
)

// Order is an upstream order as returned by the WooCommerce REST API.
type Order struct {
	ID        int64      `json:"id"`
	Number    string     `json:"number"`
	Status    string     `json:"status"`
	Total     string     `json:"total"`
	Billing   Billing    `json:"billing"`
	LineItems []LineItem `json:"line_items"`
}

type Billing struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LineItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	ProductID int64  `json:"product_id"`
}

// Product is the subset of the upstream product record the service uses.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	ImageURL string `json:"image_url"`
}

type productResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	SKU    string `json:"sku"`
	Images []struct {
		Src string `json:"src"`
	} `json:"images"`
}

// CustomerName joins the billing names, falling back to a placeholder.
func (o *Order) CustomerName() string {
	name := strings.TrimSpace(o.Billing.FirstName + " " + o.Billing.LastName)
	if name == "" {
		return "Unknown customer"
	}
	return name
}

// Client talks to a WooCommerce store over its v3 REST API.
type Client struct {
	http *resty.Client
}

// NewClient builds a client from the store URL and consumer credentials.
func NewClient(cfg *config.Config) *Client {
	http := resty.New().
		SetBaseURL(cfg.WooCommerceURL).
		SetBasicAuth(cfg.WooCommerceConsumerKey, cfg.WooCommerceConsumerSecret).
		SetTimeout(15 * time.Second)

	return &Client{http: http}
}

// FetchOpenOrders returns orders awaiting picking. Upstream failures degrade
// to an empty result: pickers see no orders rather than an error.
func (c *Client) FetchOpenOrders() []Order {
	var orders []Order

	resp, err := c.http.R().
		SetQueryParams(map[string]string{
			"status":   "processing",
			"per_page": "100",
		}).
		SetResult(&orders).
		Get("/wp-json/wc/v3/orders")

	if err != nil || resp.IsError() {
		logging.GetLogger().WithField("module", "woocommerce").
			Warn("Failed to fetch orders from upstream, returning empty list")
		return nil
	}

	return orders
}

// FetchOrder finds a single open order by ID.
func (c *Client) FetchOrder(orderID int64) (*Order, bool) {
	for _, order := range c.FetchOpenOrders() {
		if order.ID == orderID {
			return &order, true
		}
	}
	return nil, false
}

// FetchProductDetails returns product metadata, or nil when the upstream
// lookup fails.
func (c *Client) FetchProductDetails(productID int64) *Product {
	var product productResponse

	resp, err := c.http.R().
		SetResult(&product).
		Get(fmt.Sprintf("/wp-json/wc/v3/products/%d", productID))

	if err != nil || resp.IsError() {
		return nil
	}

	result := &Product{
		ID:   product.ID,
		Name: product.Name,
		SKU:  product.SKU,
	}
	if len(product.Images) > 0 {
		result.ImageURL = product.Images[0].Src
	}
	return result
}

// PushOrderStatus updates the upstream order status. Returns false on any
// failure; the caller decides what that means (local state is authoritative).
func (c *Client) PushOrderStatus(orderID int64, status string) bool {
	resp, err := c.http.R().
		SetBody(map[string]string{"status": status}).
		Put("/wp-json/wc/v3/orders/" + strconv.FormatInt(orderID, 10))

	if err != nil || resp.IsError() {
		return false
	}
	return true
}

// Package catalog is a toy product and order lookup service backed by
// in-memory sample data. Lookups that miss return a readable "not found"
// message listing valid alternatives rather than an error, so a model can
// recover by asking the user for a correction.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iangithub/langchain-ai-agent/tool"
)

// Product is one catalog entry.
type Product struct {
	Name          string
	Description   string
	Price         int
	Currency      string
	StockStatus   string
	StockQuantity int
	Category      string
	Features      []string
	Warranty      string

	// Aliases are extra lookup keys besides the product name.
	Aliases []string
}

// Order is one order record.
type Order struct {
	OrderID           string
	Status            string
	StatusCode        string
	Product           string
	Quantity          int
	TotalAmount       int
	OrderDate         string
	ShippingDate      string
	DeliveryDate      string
	EstimatedDelivery string
	EstimatedShipping string
	ShippingAddress   string
	TrackingNumber    string
	CancelDate        string
	CancelReason      string
	RefundStatus      string
}

// Catalog holds products and orders and exposes them as tools.
type Catalog struct {
	products []Product
	orders   map[string]Order
}

// New builds a catalog over the given data.
func New(products []Product, orders []Order) *Catalog {
	c := &Catalog{products: products, orders: map[string]Order{}}
	for _, o := range orders {
		c.orders[strings.ToUpper(o.OrderID)] = o
	}
	return c
}

// NewSample builds a catalog preloaded with the demo products and orders.
func NewSample() *Catalog {
	return New(sampleProducts(), sampleOrders())
}

// LookupProduct finds a product by fuzzy match against name, aliases and
// features. The second return is false when nothing matched.
func (c *Catalog) LookupProduct(query string) (Product, bool) {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return Product{}, false
	}
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			return p, true
		}
		for _, a := range p.Aliases {
			if strings.Contains(strings.ToLower(a), term) {
				return p, true
			}
		}
		for _, f := range p.Features {
			if strings.Contains(strings.ToLower(f), term) {
				return p, true
			}
		}
	}
	return Product{}, false
}

// LookupOrder finds an order by its identifier, case-insensitively.
func (c *Catalog) LookupOrder(orderID string) (Order, bool) {
	o, ok := c.orders[strings.ToUpper(strings.TrimSpace(orderID))]
	return o, ok
}

// ProductInfo returns the formatted detail text for a product query. A miss
// lists all queryable product names.
func (c *Catalog) ProductInfo(query string) string {
	p, ok := c.LookupProduct(query)
	if !ok {
		var sb strings.Builder
		fmt.Fprintf(&sb, "找不到名為「%s」的產品。\n\n目前可查詢的產品有：\n", query)
		for _, p := range c.products {
			fmt.Fprintf(&sb, "- %s\n", p.Name)
		}
		return strings.TrimSpace(sb.String())
	}

	var sb strings.Builder
	sb.WriteString("【產品資訊】\n\n")
	fmt.Fprintf(&sb, "產品名稱：%s\n", p.Name)
	fmt.Fprintf(&sb, "產品類別：%s\n\n", p.Category)
	fmt.Fprintf(&sb, "產品描述：\n%s\n\n", p.Description)
	fmt.Fprintf(&sb, "價格：NT$ %d %s\n\n", p.Price, p.Currency)
	fmt.Fprintf(&sb, "庫存狀態：%s\n", p.StockStatus)
	if p.StockQuantity > 0 {
		fmt.Fprintf(&sb, "庫存數量：%d 件\n", p.StockQuantity)
	}
	sb.WriteString("\n產品特色：\n")
	for _, f := range p.Features {
		fmt.Fprintf(&sb, "  - %s\n", f)
	}
	fmt.Fprintf(&sb, "\n保固期間：%s", p.Warranty)
	return sb.String()
}

// OrderStatus returns the formatted status text for an order id. A miss lists
// example order numbers.
func (c *Catalog) OrderStatus(orderID string) string {
	o, ok := c.LookupOrder(orderID)
	if !ok {
		ids := make([]string, 0, len(c.orders))
		for id := range c.orders {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		if len(ids) > 3 {
			ids = ids[:3]
		}
		return fmt.Sprintf(
			"找不到訂單號碼「%s」。\n\n請確認訂單號碼格式是否正確（例如：ORD-2024-001）。\n\n範例訂單號碼：%s",
			orderID, strings.Join(ids, ", "))
	}

	var sb strings.Builder
	sb.WriteString("【訂單狀態查詢】\n\n")
	fmt.Fprintf(&sb, "訂單號碼：%s\n", o.OrderID)
	fmt.Fprintf(&sb, "訂單狀態：%s\n\n", o.Status)
	fmt.Fprintf(&sb, "訂購商品：%s\n", o.Product)
	fmt.Fprintf(&sb, "數量：%d 件\n", o.Quantity)
	fmt.Fprintf(&sb, "訂單金額：NT$ %d\n\n", o.TotalAmount)
	fmt.Fprintf(&sb, "訂購日期：%s\n", o.OrderDate)

	switch o.StatusCode {
	case "delivered":
		fmt.Fprintf(&sb, "出貨日期：%s\n", o.ShippingDate)
		fmt.Fprintf(&sb, "送達日期：%s\n", o.DeliveryDate)
		fmt.Fprintf(&sb, "物流編號：%s\n", o.TrackingNumber)
		fmt.Fprintf(&sb, "配送地址：%s\n\n", o.ShippingAddress)
		sb.WriteString("訂單已順利送達！感謝您的訂購。")
	case "shipping":
		fmt.Fprintf(&sb, "出貨日期：%s\n", o.ShippingDate)
		fmt.Fprintf(&sb, "預計送達：%s\n", o.EstimatedDelivery)
		fmt.Fprintf(&sb, "物流編號：%s\n", o.TrackingNumber)
		fmt.Fprintf(&sb, "配送地址：%s\n\n", o.ShippingAddress)
		sb.WriteString("您的訂單正在運送途中，請留意收件。")
	case "processing":
		fmt.Fprintf(&sb, "預計出貨：%s\n", o.EstimatedShipping)
		fmt.Fprintf(&sb, "配送地址：%s\n\n", o.ShippingAddress)
		sb.WriteString("訂單正在處理中，將盡快為您出貨。")
	case "cancelled":
		fmt.Fprintf(&sb, "取消日期：%s\n", o.CancelDate)
		fmt.Fprintf(&sb, "取消原因：%s\n", o.CancelReason)
		fmt.Fprintf(&sb, "退款狀態：%s", o.RefundStatus)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ListProducts returns a summary of every queryable product.
func (c *Catalog) ListProducts() string {
	var sb strings.Builder
	sb.WriteString("【可查詢產品清單】\n\n")
	for _, p := range c.products {
		stock := p.StockStatus
		if p.StockQuantity > 0 {
			stock = "有庫存"
		}
		fmt.Fprintf(&sb, "%s\n", p.Name)
		fmt.Fprintf(&sb, "   價格：NT$ %d\n", p.Price)
		fmt.Fprintf(&sb, "   狀態：%s\n", stock)
		fmt.Fprintf(&sb, "   類別：%s\n\n", p.Category)
	}
	sb.WriteString("使用 get_product_info 工具可查詢產品詳細資訊。")
	return sb.String()
}

// ListOrders returns a summary of every queryable order.
func (c *Catalog) ListOrders() string {
	ids := make([]string, 0, len(c.orders))
	for id := range c.orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	sb.WriteString("【範例訂單清單】\n\n")
	for _, id := range ids {
		o := c.orders[id]
		fmt.Fprintf(&sb, "%s\n", o.OrderID)
		fmt.Fprintf(&sb, "   商品：%s\n", o.Product)
		fmt.Fprintf(&sb, "   狀態：%s\n\n", o.Status)
	}
	sb.WriteString("使用 get_order_status 工具可查詢訂單詳細狀態。")
	return sb.String()
}

// Tools exposes the catalog lookups as model-invocable tools.
func (c *Catalog) Tools() []tool.Tool {
	return []tool.Tool{
		tool.NewFunc(
			"get_product_info",
			"根據產品名稱查詢產品的詳細資訊，包括價格、庫存狀態、產品特色和保固資訊。支援模糊搜尋。",
			tool.StringParams("product_name", "要查詢的產品名稱"),
			func(ctx context.Context, args map[string]any) (string, error) {
				name, _ := args["product_name"].(string)
				return c.ProductInfo(name), nil
			},
		),
		tool.NewFunc(
			"get_order_status",
			"根據訂單號碼查詢訂單的當前狀態，包括處理進度、配送資訊和預計送達時間。",
			tool.StringParams("order_id", "訂單號碼（格式：ORD-YYYY-XXX）"),
			func(ctx context.Context, args map[string]any) (string, error) {
				id, _ := args["order_id"].(string)
				return c.OrderStatus(id), nil
			},
		),
		tool.NewFunc(
			"list_available_products",
			"列出所有可查詢的產品名稱、價格和庫存狀態。",
			tool.StringParams(),
			func(ctx context.Context, args map[string]any) (string, error) {
				return c.ListProducts(), nil
			},
		),
		tool.NewFunc(
			"list_sample_orders",
			"列出可供查詢的訂單號碼和各訂單的狀態摘要。",
			tool.StringParams(),
			func(ctx context.Context, args map[string]any) (string, error) {
				return c.ListOrders(), nil
			},
		),
	}
}

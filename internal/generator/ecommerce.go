package generator

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

type product struct {
	name      string
	category  string
	basePrice float64
	skuPrefix string
}

var productCatalog = []product{
	{"Wireless Bluetooth Headphones", "Electronics", 79.99, "ELEC"},
	{"USB-C Charging Cable", "Electronics", 12.99, "ELEC"},
	{"Portable Power Bank 10000mAh", "Electronics", 34.99, "ELEC"},
	{"Smart Watch Fitness Tracker", "Electronics", 149.99, "ELEC"},
	{"Wireless Mouse", "Electronics", 29.99, "ELEC"},
	{"Mechanical Keyboard", "Electronics", 89.99, "ELEC"},
	{"4K Webcam", "Electronics", 129.99, "ELEC"},
	{"Noise Cancelling Earbuds", "Electronics", 199.99, "ELEC"},
	{"Cotton T-Shirt", "Clothing", 19.99, "CLTH"},
	{"Denim Jeans", "Clothing", 49.99, "CLTH"},
	{"Running Shoes", "Clothing", 89.99, "CLTH"},
	{"Winter Jacket", "Clothing", 129.99, "CLTH"},
	{"Sports Shorts", "Clothing", 24.99, "CLTH"},
	{"Casual Hoodie", "Clothing", 44.99, "CLTH"},
	{"Stainless Steel Water Bottle", "Home & Kitchen", 24.99, "HOME"},
	{"Non-Stick Frying Pan", "Home & Kitchen", 34.99, "HOME"},
	{"Coffee Maker", "Home & Kitchen", 79.99, "HOME"},
	{"Blender", "Home & Kitchen", 59.99, "HOME"},
	{"Knife Set", "Home & Kitchen", 49.99, "HOME"},
	{"Bedding Set Queen", "Home & Kitchen", 89.99, "HOME"},
	{"Programming Python", "Books", 39.99, "BOOK"},
	{"Data Science Handbook", "Books", 44.99, "BOOK"},
	{"Business Strategy Guide", "Books", 29.99, "BOOK"},
	{"Fiction Bestseller Novel", "Books", 14.99, "BOOK"},
	{"Yoga Mat", "Sports & Outdoors", 29.99, "SPRT"},
	{"Resistance Bands Set", "Sports & Outdoors", 19.99, "SPRT"},
	{"Camping Tent 4-Person", "Sports & Outdoors", 159.99, "SPRT"},
	{"Hiking Backpack", "Sports & Outdoors", 79.99, "SPRT"},
	{"Dumbbells Set", "Sports & Outdoors", 69.99, "SPRT"},
}

var (
	paymentMethods  = []string{"Credit Card", "Debit Card", "PayPal", "Apple Pay", "Google Pay", "Gift Card"}
	shippingMethods = []string{"Standard", "Express", "Next Day"}
	orderStatuses   = []string{"pending", "processing", "shipped", "delivered", "cancelled"}
)

// Ecommerce generates online order transactions.
type Ecommerce struct {
	fake     *gofakeit.Faker
	anchor   time.Time
	currency string
}

// NewEcommerce builds the e-commerce transaction generator. Date fields
// anchor to the start of the current UTC day so a seed reproduces identical
// records.
func NewEcommerce(fake *gofakeit.Faker, currency string) *Ecommerce {
	return &Ecommerce{fake: fake, anchor: time.Now().UTC().Truncate(24 * time.Hour), currency: currency}
}

func (g *Ecommerce) Name() string { return "ecommerce" }

func (g *Ecommerce) Description() string {
	return "E-commerce transaction data with orders, products, pricing, and shipping details"
}

func (g *Ecommerce) Fields() []Field {
	return []Field{
		{Name: "order_id", Type: "uuid", Description: "Unique order identifier", Example: "123e4567-e89b-12d3-a456-426614174000"},
		{Name: "transaction_id", Type: "string", Description: "Transaction reference", Example: "TXN-20240115-847291"},
		{Name: "customer_id", Type: "uuid", Description: "Customer identifier", Example: "223e4567-e89b-12d3-a456-426614174000"},
		{Name: "customer_email", Type: "string", Description: "Customer email", Example: "customer@example.com"},
		{Name: "product_id", Type: "string", Description: "Product SKU", Example: "ELEC-523817"},
		{Name: "product_name", Type: "string", Description: "Product name", Example: "Wireless Mouse"},
		{Name: "product_category", Type: "string", Description: "Product category", Example: "Electronics"},
		{Name: "quantity", Type: "integer", Description: "Units ordered", Example: 2},
		{Name: "unit_price", Type: "float", Description: "Price per unit", Example: 29.99},
		{Name: "discount_percent", Type: "integer", Description: "Discount applied", Example: 10},
		{Name: "subtotal", Type: "float", Description: "Pre-tax total", Example: 53.98},
		{Name: "tax_amount", Type: "float", Description: "Tax charged", Example: 4.32},
		{Name: "shipping_cost", Type: "float", Description: "Shipping charge", Example: 5.99},
		{Name: "total_amount", Type: "float", Description: "Final order total", Example: 64.29},
		{Name: "currency", Type: "string", Description: "Currency code", Example: "USD"},
		{Name: "payment_method", Type: "string", Description: "Payment method", Example: "Credit Card"},
		{Name: "order_status", Type: "string", Description: "Order status", Example: "delivered"},
		{Name: "shipping_method", Type: "string", Description: "Shipping tier", Example: "Standard"},
		{Name: "shipping_address", Type: "string", Description: "Destination address", Example: "123 Main Street, New York, NY 10001"},
		{Name: "order_date", Type: "datetime", Description: "When the order was placed", Example: "2024-01-15T10:30:00Z"},
		{Name: "shipped_date", Type: "datetime", Description: "When the order shipped", Example: "2024-01-16T14:00:00Z"},
		{Name: "delivered_date", Type: "datetime", Description: "When the order was delivered", Example: "2024-01-20T09:15:00Z"},
	}
}

func (g *Ecommerce) Generate() (Record, error) {
	p := productCatalog[g.fake.Number(0, len(productCatalog)-1)]

	// Quantity skews heavily toward single-unit orders.
	quantity := 1
	switch roll := g.fake.Number(1, 100); {
	case roll <= 50:
		quantity = 1
	case roll <= 75:
		quantity = 2
	case roll <= 90:
		quantity = 3
	case roll <= 97:
		quantity = 4
	default:
		quantity = 5
	}

	unitPrice := round2(p.basePrice * g.fake.Float64Range(0.9, 1.1))

	discount := 0
	if g.fake.Number(1, 100) <= 30 {
		discount = g.fake.RandomInt([]int{5, 10, 15, 20, 25})
	}

	subtotal := round2(unitPrice * float64(quantity) * (1 - float64(discount)/100))
	taxRates := []float64{0, 0.05, 0.06, 0.07, 0.08, 0.0825, 0.1}
	tax := round2(subtotal * taxRates[g.fake.Number(0, len(taxRates)-1)])

	shippingMethod := shippingMethods[g.fake.Number(0, len(shippingMethods)-1)]
	var shippingCost float64
	switch shippingMethod {
	case "Express":
		shippingCost = g.fake.Float64Range(12.99, 19.99)
	case "Next Day":
		shippingCost = g.fake.Float64Range(24.99, 34.99)
	default:
		shippingCost = g.fake.Float64Range(4.99, 9.99)
	}
	shippingCost = round2(shippingCost)

	now := g.anchor
	orderDate := g.fake.DateRange(now.AddDate(-1, 0, 0), now)
	status := orderStatuses[g.fake.Number(0, len(orderStatuses)-1)]

	var shippedDate, deliveredDate any
	if status == "shipped" || status == "delivered" {
		shipped := orderDate.AddDate(0, 0, g.fake.Number(1, 3))
		shippedDate = shipped
		if status == "delivered" {
			days := g.fake.Number(5, 10)
			if shippingMethod == "Next Day" {
				days = 2
			} else if shippingMethod == "Express" {
				days = 4
			}
			deliveredDate = shipped.AddDate(0, 0, days)
		}
	}

	return Record{
		"order_id":         g.fake.UUID(),
		"transaction_id":   fmt.Sprintf("TXN-%s-%06d", orderDate.Format("20060102"), g.fake.Number(100000, 999999)),
		"customer_id":      g.fake.UUID(),
		"customer_email":   g.fake.Email(),
		"product_id":       fmt.Sprintf("%s-%06d", p.skuPrefix, g.fake.Number(100000, 999999)),
		"product_name":     p.name,
		"product_category": p.category,
		"quantity":         quantity,
		"unit_price":       unitPrice,
		"discount_percent": discount,
		"subtotal":         subtotal,
		"tax_amount":       tax,
		"shipping_cost":    shippingCost,
		"total_amount":     round2(subtotal + tax + shippingCost),
		"currency":         g.currency,
		"payment_method":   paymentMethods[g.fake.Number(0, len(paymentMethods)-1)],
		"order_status":     status,
		"shipping_method":  shippingMethod,
		"shipping_address": fmt.Sprintf("%s, %s, %s %s", g.fake.Street(), g.fake.City(), g.fake.StateAbr(), g.fake.Zip()),
		"order_date":       orderDate,
		"shipped_date":     shippedDate,
		"delivered_date":   deliveredDate,
	}, nil
}

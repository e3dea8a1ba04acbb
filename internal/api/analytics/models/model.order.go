// Package analyticsmodels chứa model của collection orders (chỉ đọc, do hệ thống bán hàng ghi).
package analyticsmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái đơn hàng
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// Phương thức thanh toán thường gặp. Dữ liệu thực tế có thể là text tự do.
const (
	PaymentCash         = "cash"
	PaymentBankTransfer = "bank-transfer"
	PaymentMercadoPago  = "mercado-pago"
)

// DefaultOrderType là loại đơn gán cho đơn cũ chưa có orderType
const DefaultOrderType = "minorista"

// Order là một đơn hàng trong collection orders
type Order struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Status        string             `json:"status" bson:"status" index:"single:1;compound:status_createdAt"`                         // pending | confirmed
	Total         float64            `json:"total" bson:"total"`                                                                      // Tổng tiền
	Items         []OrderItem        `json:"items" bson:"items"`                                                                      // Sản phẩm
	User          any                `json:"user,omitempty" bson:"user,omitempty"`                                                    // ObjectID, string hoặc object có _id
	PaymentMethod string             `json:"paymentMethod" bson:"paymentMethod" index:"single:1"`                                     // cash, bank-transfer, mercado-pago...
	Address       Address            `json:"address" bson:"address"`                                                                  // Địa chỉ giao hàng
	DeliveryArea  DeliveryArea       `json:"deliveryArea" bson:"deliveryArea"`                                                        // Khu vực giao hàng
	OrderType     string             `json:"orderType,omitempty" bson:"orderType,omitempty" index:"single:1,sparse"`                  // Loại đơn (minorista...)
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt" index:"single:1,order:-1;compound:status_createdAt,order:-1"` // Trục thời gian của mọi báo cáo
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// OrderItem là một sản phẩm trong đơn
type OrderItem struct {
	ID              string       `json:"id" bson:"id"`
	Name            string       `json:"name" bson:"name"`
	SameDayDelivery bool         `json:"sameDayDelivery,omitempty" bson:"sameDayDelivery,omitempty"`
	Options         []ItemOption `json:"options" bson:"options"`
}

// ItemOption là biến thể (khối lượng, hương vị...) của sản phẩm, mang giá và số lượng
type ItemOption struct {
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

// Address là địa chỉ giao hàng; cặp (address, zipCode) được dùng làm định danh người mua
type Address struct {
	Address string `json:"address" bson:"address"`
	ZipCode string `json:"zipCode" bson:"zipCode"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
}

// DeliveryArea là khu vực giao hàng
type DeliveryArea struct {
	Description     string `json:"description,omitempty" bson:"description,omitempty"`
	SameDayDelivery bool   `json:"sameDayDelivery" bson:"sameDayDelivery"`
}

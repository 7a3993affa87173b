// Package domain defines the persistence models for the storefront: catalog
// reference data (brands, categories, products), normalized geography
// (cities, addresses), customer accounts, and the order aggregate produced by
// checkout. These types are mapped with GORM and form the core data layer of
// the application.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoleCustomer and RoleAdmin are the two account roles the storefront knows.
// Role is stored as a plain string column; customer is the default.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// StatusProcessing is the order status every fresh checkout is created with.
// The row must exist in the order_status table before checkout can run; its
// absence is a deployment fault, not a user error.
const StatusProcessing = "PROCESSING"

// Brand is a product manufacturer. Read-only reference data as far as this
// service is concerned.
type Brand struct {
	ID          uint   `json:"id"          gorm:"primaryKey"`
	Name        string `json:"name"        gorm:"type:varchar(100);not null"`
	Description string `json:"description" gorm:"type:text"`
}

// TableName returns the database table name for Brand.
func (Brand) TableName() string { return "brands" }

// Category is a product category. Categories form a tree via ParentID.
type Category struct {
	ID          uint      `json:"id"          gorm:"primaryKey"`
	Name        string    `json:"name"        gorm:"type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:text"`
	ParentID    *uint     `json:"parent_id,omitempty" gorm:"index"`
	Parent      *Category `json:"parent,omitempty"    gorm:"foreignKey:ParentID"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Product is a sellable catalog item.
//
// Fields:
//   - Price: catalog price; checkout does NOT read it, line items carry the
//     client-declared price at cart time.
//   - StockQuantity: simple on-hand counter, no reservation semantics.
//   - IsActive: listing visibility flag.
type Product struct {
	ID            uint            `json:"id"             gorm:"primaryKey"`
	Name          string          `json:"name"           gorm:"type:varchar(100);not null"`
	Description   string          `json:"description"    gorm:"type:text"`
	Price         decimal.Decimal `json:"price"          gorm:"type:decimal(10,2);not null"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0"`
	IsActive      bool            `json:"is_active"      gorm:"not null;default:true"`
	BrandID       *uint           `json:"brand_id,omitempty"    gorm:"index"`
	CategoryID    *uint           `json:"category_id,omitempty" gorm:"index"`

	Brand    *Brand         `json:"brand,omitempty"    gorm:"foreignKey:BrandID"`
	Category *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Images   []ProductImage `json:"images,omitempty"   gorm:"foreignKey:ProductID"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// ProductImage is an image URL attached to a product.
type ProductImage struct {
	ID        uint   `json:"id"        gorm:"primaryKey"`
	ProductID uint   `json:"product_id" gorm:"not null;index"`
	ImageURL  string `json:"image_url" gorm:"type:varchar(500);not null"`
}

// TableName returns the database table name for ProductImage.
func (ProductImage) TableName() string { return "product_images" }

// City is a normalized geographic row. The natural key is the full triple
// (city_name, postal_code, country): two cities sharing a name but not a
// postal code are distinct rows. Rows are immutable once created: the
// checkout and registration pipelines only ever create or reuse them, and
// the composite unique index (not an application-level existence check) is
// what guarantees at most one row per triple under concurrent writers.
type City struct {
	ID         uint   `json:"id"          gorm:"primaryKey"`
	CityName   string `json:"city_name"   gorm:"type:varchar(100);not null;uniqueIndex:ux_city_triple,priority:1"`
	PostalCode string `json:"postal_code" gorm:"type:varchar(20);not null;uniqueIndex:ux_city_triple,priority:2"`
	Country    string `json:"country"     gorm:"type:varchar(100);not null;uniqueIndex:ux_city_triple,priority:3"`
}

// TableName returns the database table name for City.
func (City) TableName() string { return "cities" }

// Address is a street address within a city. Addresses are deliberately NOT
// deduplicated: every checkout creates a fresh row even when the fields match
// an existing one, and multiple owners (a user profile, an order's shipping
// slot) may reference distinct rows with identical content.
type Address struct {
	ID          uint   `json:"id"           gorm:"primaryKey"`
	AddressLine string `json:"address_line" gorm:"type:varchar(255);not null"`
	CityID      uint   `json:"city_id"      gorm:"not null;index"`
	City        *City  `json:"city,omitempty" gorm:"foreignKey:CityID"`
}

// TableName returns the database table name for Address.
func (Address) TableName() string { return "addresses" }

// User is a customer (or admin) account. Email is the identity key and is
// unique at the store level; the checkout pipeline get-or-creates on it.
// Password holds a bcrypt hash, or the empty string for accounts
// materialized by guest checkout (no credentials established).
type User struct {
	ID        uint     `json:"id"         gorm:"primaryKey"`
	Username  string   `json:"username"   gorm:"type:varchar(100)"`
	FirstName string   `json:"first_name" gorm:"type:varchar(100)"`
	LastName  string   `json:"last_name"  gorm:"type:varchar(100)"`
	Email     string   `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_user_email"`
	Password  string   `json:"-"          gorm:"type:varchar(100)"`
	Phone     string   `json:"phone"      gorm:"type:varchar(20)"`
	AddressID *uint    `json:"address_id,omitempty" gorm:"index"`
	Role      string   `json:"role"       gorm:"type:varchar(50);not null;default:customer"`
	Address   *Address `json:"address,omitempty" gorm:"foreignKey:AddressID"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// OrderStatus is pre-seeded reference data (PROCESSING, SHIPPED, ...).
// The checkout pipeline looks rows up by name and never creates them.
type OrderStatus struct {
	ID         uint   `json:"id"          gorm:"primaryKey"`
	StatusName string `json:"status_name" gorm:"type:varchar(50);not null;uniqueIndex:ux_status_name"`
}

// TableName returns the database table name for OrderStatus.
func (OrderStatus) TableName() string { return "order_statuses" }

// Order is the header row materialized by checkout. OrderDate is set at
// creation and never updated. TotalAmount is the client-declared total,
// stored verbatim (see CheckoutService for the rationale). An order is never
// visible without at least one OrderItem: creation is all-or-nothing inside
// the checkout transaction.
type Order struct {
	ID                uint            `json:"id"              gorm:"primaryKey"`
	UserID            uint            `json:"user_id"         gorm:"not null;index:idx_user_orders"`
	OrderDate         time.Time       `json:"order_date"      gorm:"not null;index"`
	TotalAmount       decimal.Decimal `json:"total_amount"    gorm:"type:decimal(10,2);not null"`
	OrderStatusID     uint            `json:"order_status_id" gorm:"not null;index"`
	TrackingNumber    string          `json:"tracking_number" gorm:"type:varchar(100)"`
	ShippingAddressID uint            `json:"shipping_address_id" gorm:"not null"`

	User            *User        `json:"-" gorm:"foreignKey:UserID"`
	OrderStatus     *OrderStatus `json:"-" gorm:"foreignKey:OrderStatusID"`
	ShippingAddress *Address     `json:"-" gorm:"foreignKey:ShippingAddressID"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// OrderItem is one cart line of an order. PricePerUnit is the unit price the
// client declared at checkout time, not a catalog lookup. The line subtotal
// is derived (quantity × price) at read time and never stored.
type OrderItem struct {
	ID           uint            `json:"id"             gorm:"primaryKey"`
	OrderID      uint            `json:"order_id"       gorm:"not null;index:idx_order_items"`
	ProductID    *uint           `json:"product_id"     gorm:"index"`
	Quantity     int             `json:"quantity"       gorm:"not null"`
	PricePerUnit decimal.Decimal `json:"price_per_unit" gorm:"type:decimal(10,2);not null"`

	// Order is the parent aggregate. Items are cascade-deleted with it.
	Order   *Order   `json:"-" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Product *Product `json:"-" gorm:"foreignKey:ProductID"`
}

// TableName returns the database table name for OrderItem.
func (OrderItem) TableName() string { return "order_items" }

// Subtotal computes quantity × price-per-unit for this line. Always derived,
// never persisted, so later price corrections reflect immediately.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PricePerUnit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PaymentStatus is pre-seeded reference data for payment records.
type PaymentStatus struct {
	ID         uint   `json:"id"          gorm:"primaryKey"`
	StatusName string `json:"status_name" gorm:"type:varchar(50);not null;uniqueIndex:ux_payment_status_name"`
}

// TableName returns the database table name for PaymentStatus.
func (PaymentStatus) TableName() string { return "payment_statuses" }

// Payment is a stored payment record. The storefront records payments but
// never talks to an external processor.
type Payment struct {
	ID              uint            `json:"id"             gorm:"primaryKey"`
	OrderID         uint            `json:"order_id"       gorm:"not null;index"`
	PaymentMethod   string          `json:"payment_method" gorm:"type:varchar(50);not null"`
	Amount          decimal.Decimal `json:"amount"         gorm:"type:decimal(10,2);not null"`
	PaymentDate     time.Time       `json:"payment_date"   gorm:"not null"`
	PaymentStatusID uint            `json:"payment_status_id" gorm:"not null"`

	Order         *Order         `json:"-" gorm:"foreignKey:OrderID"`
	PaymentStatus *PaymentStatus `json:"-" gorm:"foreignKey:PaymentStatusID"`
}

// TableName returns the database table name for Payment.
func (Payment) TableName() string { return "payments" }

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sunu-rekolt/marketplace/internal/domain/order"
)

const (
	RoleFarmer = "farmer"
	RoleBuyer  = "buyer"
	RoleAdmin  = "admin"
)

type Profile struct {
	ID              uuid.UUID `gorm:"primaryKey"              json:"id"`
	Phone           string    `gorm:"uniqueIndex;not null"    json:"phone"`
	PasswordHash    string    `gorm:"not null"                json:"-"`
	Role            string    `gorm:"not null;index"          json:"role"`
	FullName        string    `gorm:"not null"                json:"full_name"`
	Location        string    `                               json:"location,omitempty"`
	FarmSize        string    `                               json:"farm_size,omitempty"`
	Bio             string    `                               json:"bio,omitempty"`
	AvatarURL       string    `                               json:"avatar_url,omitempty"`
	FieldPictureURL string    `                               json:"field_picture_url,omitempty"`
	ExpoPushToken   *string   `                               json:"-"`
	CreatedAt       time.Time `                               json:"created_at"`
	UpdatedAt       time.Time `                               json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Profile) TableName() string { return "profiles" }

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"            json:"id"`
	JTI       string    `gorm:"uniqueIndex;not null"  json:"jti"`
	Token     string    `gorm:"uniqueIndex;not null"  json:"-"`
	UserID    uuid.UUID `gorm:"index;not null"        json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"              json:"expires_at"`
	Revoked   bool      `gorm:"default:false"         json:"revoked"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

const (
	CategoryVegetables = "vegetables"
	CategoryFruits     = "fruits"
	CategoryGrains     = "grains"
	CategoryLivestock  = "livestock"
	CategoryDairy      = "dairy"
	CategoryOther      = "other"
)

var ProductCategories = []string{
	CategoryVegetables, CategoryFruits, CategoryGrains, CategoryLivestock, CategoryDairy, CategoryOther,
}

var ProductUnits = []string{"kg", "ton", "bag", "sack", "dozen", "piece", "liter"}

type Product struct {
	ID          uuid.UUID `gorm:"primaryKey"                 json:"id"`
	FarmerID    uuid.UUID `gorm:"index;not null"             json:"farmer_id"`
	Name        string    `gorm:"not null"                   json:"name"`
	Description string    `                                  json:"description"`
	Price       int64     `gorm:"not null;check:price >= 0"  json:"price"`
	Quantity    int       `gorm:"not null;default:0"         json:"quantity"`
	Unit        string    `gorm:"not null"                   json:"unit"`
	Category    string    `gorm:"not null;index"             json:"category"`
	ImageURL    string    `                                  json:"image_url,omitempty"`
	IsApproved  bool      `gorm:"not null;default:false"     json:"is_approved"`
	IsArchived  bool      `gorm:"not null;default:false"     json:"is_archived"`
	CreatedAt   time.Time `                                  json:"created_at"`
	UpdatedAt   time.Time `                                  json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Product) TableName() string { return "products" }

// Public reports whether the product belongs in the public catalog.
func (p *Product) Public() bool { return p.IsApproved && !p.IsArchived }

// Pending products have not been approved yet.
func (p *Product) Pending() bool { return !p.IsApproved }

type Order struct {
	ID              uuid.UUID    `gorm:"primaryKey"             json:"id"`
	BuyerID         uuid.UUID    `gorm:"index;not null"         json:"buyer_id"`
	Total           int64        `gorm:"not null"               json:"total"`
	Status          order.Status `gorm:"not null;index"         json:"status"`
	PaymentMethod   string       `gorm:"not null"               json:"payment_method"`
	PaymentRef      string       `                              json:"payment_ref,omitempty"`
	DeliveryAddress string       `gorm:"not null"               json:"delivery_address"`
	DeliveryDetails string       `                              json:"delivery_details,omitempty"`
	ContactPhone    string       `gorm:"not null"               json:"contact_phone"`
	CreatedAt       time.Time    `gorm:"index"                  json:"created_at"`
	UpdatedAt       time.Time    `                              json:"updated_at"`
	Items           []OrderItem  `gorm:"foreignKey:OrderID"     json:"items,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID          uuid.UUID `gorm:"primaryKey"                    json:"id"`
	OrderID     uuid.UUID `gorm:"index;not null"                json:"order_id"`
	ProductID   uuid.UUID `gorm:"index;not null"                json:"product_id"`
	FarmerID    uuid.UUID `gorm:"index;not null"                json:"farmer_id"`
	ProductName string    `gorm:"not null"                      json:"product_name"`
	Quantity    int       `gorm:"not null;check:quantity > 0"   json:"quantity"`
	PriceAtTime int64     `gorm:"not null"                      json:"price_at_time"`
	CreatedAt   time.Time `                                     json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (OrderItem) TableName() string { return "order_items" }

func (i OrderItem) Amount() int64 { return i.PriceAtTime * int64(i.Quantity) }

const (
	AlertNewOrder        = "new_order"
	AlertOrderPaid       = "order_paid"
	AlertOrderDelivering = "order_delivering"
	AlertOrderDelivered  = "order_delivered"
	AlertOrderReceived   = "order_received"
	AlertProductApproved = "product_approved_farmer"
	AlertProductRejected = "product_rejected_farmer"

	ImportanceLow    = "low"
	ImportanceNormal = "normal"
	ImportanceHigh   = "high"
)

type Alert struct {
	ID               uuid.UUID  `gorm:"primaryKey"                       json:"id"`
	UserID           uuid.UUID  `gorm:"index:idx_alert_user;not null"    json:"user_id"`
	ActorID          *uuid.UUID `                                        json:"actor_id,omitempty"`
	Title            string     `gorm:"not null"                         json:"title"`
	Message          string     `gorm:"not null"                         json:"message"`
	Type             string     `gorm:"not null"                         json:"type"`
	Importance       string     `gorm:"not null;default:normal"          json:"importance"`
	IsRead           bool       `gorm:"index:idx_alert_user;default:false" json:"is_read"`
	RelatedOrderID   *uuid.UUID `                                        json:"related_order_id,omitempty"`
	RelatedProductID *uuid.UUID `                                        json:"related_product_id,omitempty"`
	CreatedAt        time.Time  `gorm:"index"                            json:"created_at"`
}

func (a *Alert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Importance == "" {
		a.Importance = ImportanceNormal
	}
	return nil
}

func (Alert) TableName() string { return "user_alerts" }

var InputCategories = []string{"seeds", "fertilizer", "pesticide", "equipment", "other"}

type AgriculturalInput struct {
	ID          uuid.UUID `gorm:"primaryKey"       json:"id"`
	Name        string    `gorm:"not null"         json:"name"`
	Description string    `                        json:"description"`
	Category    string    `gorm:"not null;index"   json:"category"`
	Price       int64     `gorm:"not null"         json:"price"`
	Unit        string    `gorm:"not null"         json:"unit"`
	Supplier    string    `                        json:"supplier,omitempty"`
	ImageURL    string    `                        json:"image_url,omitempty"`
	CreatedAt   time.Time `                        json:"created_at"`
}

func (i *AgriculturalInput) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (AgriculturalInput) TableName() string { return "agricultural_inputs" }

func All() []any {
	return []any{
		&Profile{}, &RefreshToken{}, &Product{}, &Order{}, &OrderItem{}, &Alert{}, &AgriculturalInput{},
	}
}

package models

import (
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"not null"                 json:"name"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`

	VerificationToken string     `gorm:""                json:"-"`
	IsVerified        bool       `gorm:"default:false"   json:"isVerified"`
	Verified          *time.Time `json:"verified,omitempty"`

	// PasswordToken holds the sha256 hex of the reset token, never the
	// raw value.
	PasswordToken          string     `json:"-"`
	PasswordTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RefreshToken is the server-side session record. The unique index on
// UserID keeps at most one active record per user and settles concurrent
// first logins racing to create one.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"             json:"id"`
	Token     string `gorm:"not null"               json:"-"`
	UserID    uint   `gorm:"uniqueIndex;not null"   json:"user_id"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
	IsValid   bool   `gorm:"default:true"           json:"is_valid"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name        string  `gorm:"not null"                   json:"name"`
	Price       float64 `gorm:"not null"                   json:"price"`
	Description string  `gorm:"not null"                   json:"description"`
	Image       string  `gorm:"default:/uploads/example.jpeg" json:"image"`
	Category    string  `gorm:"not null"                   json:"category"`
	Company     string  `gorm:"not null"                   json:"company"`

	Colors       []string `gorm:"serializer:json"           json:"colors"`
	Featured     bool     `gorm:"default:false"             json:"featured"`
	FreeShipping bool     `gorm:"default:false"             json:"freeShipping"`
	Inventory    int      `gorm:"default:15"                json:"inventory"`

	AverageRating float64 `gorm:"default:0"                 json:"averageRating"`
	NumOfReviews  int     `gorm:"default:0"                 json:"numOfReviews"`

	UserID uint `gorm:"index;not null" json:"user_id"`

	Reviews []Review `gorm:"constraint:OnDelete:CASCADE" json:"reviews,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Review is unique per (product, user): one review per user per product.
type Review struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"                json:"id"`
	Rating  int    `gorm:"not null"                                json:"rating"`
	Title   string `gorm:"not null"                                json:"title"`
	Comment string `gorm:"not null"                                json:"comment"`

	UserID    uint `gorm:"not null;uniqueIndex:idx_review_product_user" json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_review_product_user" json:"product_id"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusFailed    = "failed"
	OrderStatusPaid      = "paid"
	OrderStatusDelivered = "delivered"
	OrderStatusCanceled  = "canceled"
)

type Order struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Tax         float64 `gorm:"not null"                 json:"tax"`
	ShippingFee float64 `gorm:"not null"                 json:"shippingFee"`
	SubTotal    float64 `gorm:"not null"                 json:"subTotal"`
	Total       float64 `gorm:"not null"                 json:"total"`

	OrderItems []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"orderItems"`

	Status       string `gorm:"default:pending" json:"status"`
	ClientSecret string `gorm:"not null"        json:"clientSecret"`
	PaymentID    string `json:"paymentID,omitempty"`

	UserID uint `gorm:"index;not null" json:"user_id"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null"           json:"order_id"`
	Name      string  `gorm:"not null"                 json:"name"`
	Image     string  `gorm:"not null"                 json:"image"`
	Price     float64 `gorm:"not null"                 json:"price"`
	Amount    int     `gorm:"not null"                 json:"amount"`
	ProductID uint    `gorm:"not null"                 json:"product_id"`
}

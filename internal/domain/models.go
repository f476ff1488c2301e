package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

type Subcategory struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	CategoryID   int64  `db:"category_id" json:"category_id"`
	CategoryName string `db:"category_name" json:"category_name"`
	CreatedAt    string `db:"created_at" json:"created_at"`
}

// Product is the row stored in products. Category and subcategory are
// optional: deleting a category with cascade detaches its products.
type Product struct {
	ID            int64           `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Description   string          `db:"description" json:"description"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Quantity      int             `db:"quantity" json:"quantity"`
	CategoryID    *int64          `db:"category_id" json:"category_id"`
	SubcategoryID *int64          `db:"subcategory_id" json:"subcategory_id"`
	CreatedAt     string          `db:"created_at" json:"created_at"`
	UpdatedAt     string          `db:"updated_at" json:"updated_at"`
}

// ProductView is what the storefront renders: the product, its image URLs
// and the names it is filed under.
type ProductView struct {
	Product
	CategoryName    string   `db:"category_name" json:"category_name"`
	SubcategoryName string   `db:"subcategory_name" json:"subcategory_name"`
	SerialCount     int      `db:"serial_count" json:"serial_count"`
	Images          []string `db:"-" json:"images"`
}

type ProductImage struct {
	ID        int64  `db:"id" json:"id"`
	ProductID int64  `db:"product_id" json:"product_id"`
	Path      string `db:"path" json:"path"`
}

type ProductSerial struct {
	ID        int64  `db:"id" json:"id"`
	ProductID int64  `db:"product_id" json:"product_id"`
	Serial    string `db:"serial" json:"serial"`
	Status    string `db:"status" json:"status"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

// SerialInfo is the result of a successful serial validation.
type SerialInfo struct {
	Serial      string `db:"serial" json:"serial"`
	ProductID   int64  `db:"product_id" json:"product_id"`
	ProductName string `db:"product_name" json:"product_name"`
	Status      string `db:"status" json:"-"`
}

type WarrantyRegistration struct {
	ID           int64  `db:"id" json:"id"`
	Serial       string `db:"serial" json:"serial"`
	ProductID    int64  `db:"product_id" json:"product_id"`
	ProductName  string `db:"product_name" json:"product_name"`
	UserName     string `db:"user_name" json:"user_name"`
	UserEmail    string `db:"user_email" json:"user_email"`
	UserPhone    string `db:"user_phone" json:"user_phone"`
	Status       string `db:"status" json:"status"`
	RegisteredAt string `db:"registered_at" json:"registered_at"`
}

type AdminUser struct {
	ID        int64  `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	Hash      string `db:"password_hash" json:"-"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

type ContactMessage struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	Phone     string `db:"phone" json:"phone"`
	Message   string `db:"message" json:"message"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

type DashboardStats struct {
	WarrantyRequests int `db:"warranty_requests" json:"warranty_requests"`
	PendingRequests  int `db:"pending_requests" json:"pending_requests"`
	Categories       int `db:"categories" json:"categories"`
	Subcategories    int `db:"subcategories" json:"subcategories"`
	Products         int `db:"products" json:"products"`
	Serials          int `db:"serials" json:"serials"`
	ContactMessages  int `db:"contact_messages" json:"contact_messages"`
}

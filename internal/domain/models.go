package domain

import "time"

const (
	RoleConsumer = "consumer"
	RoleWorker   = "worker"
	RoleAdmin    = "admin"
)

type User struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	Role         string `db:"role" json:"role"` // consumer | worker | admin
	Points       int    `db:"points" json:"points"`
	TotalScanned int    `db:"total_scanned" json:"totalScanned"`
	TotalFines   int    `db:"total_fines" json:"totalFines"`
	UnpaidFines  int    `db:"unpaid_fines" json:"unpaidFines"`
}

// Product is a piece of packaging registered to a user at purchase time.
// Disposed only ever flips from false to true.
type Product struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Barcode          string     `json:"barcode"`
	Category         string     `json:"category"`
	OwnerID          string     `json:"ownerId"`
	PurchasedAt      time.Time  `json:"purchasedAt"`
	Disposed         bool       `json:"disposed"`
	DisposedAt       *time.Time `json:"disposedAt,omitempty"`
	DisposalLocation string     `json:"disposalLocation,omitempty"`
	BinID            string     `json:"binId,omitempty"`
}

const (
	BinGeneral   = "general"
	BinRecycling = "recycling"
	BinOrganic   = "organic"
)

// Bin is a physical waste receptacle. Reference data, never written at runtime.
type Bin struct {
	ID           string `db:"id" json:"id"`
	Barcode      string `db:"barcode" json:"barcode"`
	Location     string `db:"location" json:"location"`
	Type         string `db:"type" json:"type"` // general | recycling | organic
	Municipality string `db:"municipality" json:"municipality"`
}

type Fine struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ProductID  string    `json:"productId"`
	Amount     int       `json:"amount"` // kr
	Location   string    `json:"location"`
	Date       time.Time `json:"date"`
	Paid       bool      `json:"paid"`
	DueDate    time.Time `json:"dueDate"`
	RecordedBy string    `json:"recordedBy"`
}

package domain

// InventoryItem Model
type InventoryItem struct {
	ItemID    uint    `gorm:"primaryKey;column:item_id" json:"item_id"` // Primary key
	ItemName  string  `gorm:"not null" json:"item_name"`                // Item name
	Category  string  `json:"category"`                                 // Item category
	Quantity  int     `gorm:"not null;default:0" json:"quantity"`       // Units in stock
	UnitPrice float64 `gorm:"not null;default:0" json:"unit_price"`     // Price per unit
	UserID    uint    `gorm:"index;not null" json:"user_id"`            // Foreign key to the owning User, fixed at creation
	CreatedAt int64   `gorm:"autoCreateTime:milli" json:"created_at"`   // Timestamp of creation in milliseconds
}

// TableName keeps the table name aligned with the persisted schema.
func (InventoryItem) TableName() string {
	return "inventory"
}

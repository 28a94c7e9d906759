package domain

// User Model
type User struct {
	ID       uint            `gorm:"primaryKey" json:"id"`            // Primary key
	Username string          `gorm:"unique;not null" json:"username"` // Unique username
	Password string          `gorm:"not null" json:"-"`               // Hashed password, never serialized
	Role     string          `gorm:"default:user" json:"role"`        // Role: user or admin
	Items    []InventoryItem `gorm:"foreignKey:UserID" json:"-"`      // Items owned by this user
}

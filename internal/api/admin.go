package api

import (
	"context"                          // Context for Redis operations
	"inventory_system/internal/domain" // Importing domain models
	"inventory_system/internal/utils"  // Utility functions
	"net/http"                         // HTTP status codes
	"time"                             // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Cache keys for the admin listings
const (
	adminUsersCacheKey     = "admin:users"     // Admin user listing
	adminInventoryCacheKey = "admin:inventory" // Admin item listing
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID        uint   `json:"id"`         // User ID
	Username  string `json:"username"`   // Username
	Role      string `json:"role"`       // User role
	ItemCount int64  `json:"item_count"` // Number of items the user owns
}

// ListUsersHandler returns all users with the number of items each owns
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()    // Use background context for Redis
		cacheKey := adminUsersCacheKey // Cache key for the admin user listing
		var users []UserAdminResponse  // Slice to hold users
		if rdb != nil {
			// If cached data found, return it
			found, err := utils.GetCache(ctx, rdb, cacheKey, &users)
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{"users": users, "cached": true})
				return
			}
		}
		// Fetch all users with their item counts
		err := db.Model(&domain.User{}).
			Select("users.id, users.username, users.role, COUNT(inventory.item_id) AS item_count").
			Joins("LEFT JOIN inventory ON inventory.user_id = users.id").
			Group("users.id, users.username, users.role").
			Scan(&users).Error
		if err != nil {
			writeStoreError(c, "Failed to fetch users", err)
			return
		}
		if rdb != nil {
			// Cache the response for future requests
			_ = utils.SetCache(ctx, rdb, cacheKey, users, 60*time.Second)
		}
		c.JSON(http.StatusOK, gin.H{"users": users, "cached": false}) // Return the response
	}
}

// ListAllItemsHandler returns every inventory item across all users
func ListAllItemsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()        // Use background context for Redis
		cacheKey := adminInventoryCacheKey // Cache key for the admin item listing
		var items []domain.InventoryItem   // Slice to hold items
		if rdb != nil {
			// If cached data found, return it
			found, err := utils.GetCache(ctx, rdb, cacheKey, &items)
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{"items": items, "cached": true})
				return
			}
		}
		// Fetch all items, most recently created first
		if err := db.Order("created_at desc").Find(&items).Error; err != nil {
			writeStoreError(c, "Failed to fetch items", err)
			return
		}
		if rdb != nil {
			// Cache the response for future requests
			_ = utils.SetCache(ctx, rdb, cacheKey, items, 60*time.Second)
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "cached": false}) // Return the response
	}
}

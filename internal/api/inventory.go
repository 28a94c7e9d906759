package api

import (
	"context"                          // Context for Redis operations
	"errors"                           // Error inspection
	"inventory_system/internal/domain" // Importing domain models
	"inventory_system/internal/utils"  // Utility functions
	"net/http"                         // HTTP status codes
	"strconv"                          // String conversion
	"time"                             // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library

	"github.com/sirupsen/logrus" // Logging library
)

// ItemRequest carries the writable fields of an inventory item
type ItemRequest struct {
	ItemName  string  `json:"item_name" binding:"required"` // Item name must be provided
	Category  string  `json:"category"`                     // Item category
	Quantity  int     `json:"quantity" binding:"gte=0"`     // Units in stock
	UnitPrice float64 `json:"unit_price" binding:"gte=0"`   // Price per unit
}

// PublicInventoryItem is an inventory row joined with the owner's username
type PublicInventoryItem struct {
	ItemID    uint    `json:"item_id"`    // Item ID
	ItemName  string  `json:"item_name"`  // Item name
	Category  string  `json:"category"`   // Item category
	Quantity  int     `json:"quantity"`   // Units in stock
	UnitPrice float64 `json:"unit_price"` // Price per unit
	Username  string  `json:"username"`   // Owner's username
	CreatedAt int64   `json:"created_at"` // Creation timestamp
}

// ownCacheKey is the cache key for a user's own listing
func ownCacheKey(userID uint) string {
	return "inventory:user:" + strconv.Itoa(int(userID))
}

// publicCacheKey is the cache key for the public listing of a username
func publicCacheKey(username string) string {
	return "inventory:public:" + username
}

// mutationCacheKeys lists every cache entry a mutation by this owner can stale:
// the owner's own listing, the owner's public listing, and the admin listings
func mutationCacheKeys(userID uint, username string) []string {
	return []string{
		ownCacheKey(userID),      // Owner's own listing
		publicCacheKey(username), // Owner's public listing
		adminUsersCacheKey,       // Admin user listing (item counts)
		adminInventoryCacheKey,   // Admin item listing
	}
}

// invalidateItemCaches drops the stale listing caches after a mutation
func invalidateItemCaches(c *gin.Context, userID uint, username string) {
	// Redis client is injected into the context by the protected route group
	if v, ok := c.Get("redisClient"); ok {
		if rdb, ok := v.(*redis.Client); ok && rdb != nil {
			ctx := context.Background() // Context for Redis operations
			_ = utils.DeleteCache(ctx, rdb, mutationCacheKeys(userID, username)...)
		}
	}
}

// CreateItemHandler persists a new item owned by the authenticated user
func CreateItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ItemRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// The owner is fixed at creation time and never transferred
		item := domain.InventoryItem{
			ItemName:  req.ItemName,  // Item name
			Category:  req.Category,  // Item category
			Quantity:  req.Quantity,  // Units in stock
			UnitPrice: req.UnitPrice, // Price per unit
			UserID:    userID.(uint), // Owning user
		}
		// Save the new item
		if err := db.Create(&item).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create item") // Log failure
			writeStoreError(c, "Failed to create item", err)
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,      // User ID
			"item_id":   item.ItemID, // Item ID
			"item_name": item.ItemName,
		}).Info("Item created") // Log item creation
		// Invalidate the owner's listing caches
		invalidateItemCaches(c, userID.(uint), c.GetString("username"))
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "Item added", "item": item})
	}
}

// ListOwnItemsHandler returns the authenticated user's items, newest first
func ListOwnItemsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()            // Context for Redis operations
		cacheKey := ownCacheKey(userID.(uint)) // Cache key for this user's listing
		var items []domain.InventoryItem       // Slice to hold items
		if rdb != nil {
			// Try to get from cache
			found, err := utils.GetCache(ctx, rdb, cacheKey, &items)
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{"items": items, "cached": true})
				return
			}
		}
		// Fetch items owned by this user, most recently created first
		if err := db.Where("user_id = ?", userID).Order("created_at desc").Find(&items).Error; err != nil {
			writeStoreError(c, "Failed to fetch items", err)
			return
		}
		// Keep the empty listing an empty array rather than null
		if items == nil {
			items = []domain.InventoryItem{}
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, items, 60*time.Second) // Cache for 60 seconds
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "cached": false}) // Return the listing
	}
}

// ListInventoryByUsernameHandler is the public read path: it resolves a
// username and returns that user's items joined with the username. This is
// the one deliberate exception to per-user ownership, read-only by design.
func ListInventoryByUsernameHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username") // Target username from the path
		ctx := context.Background()     // Context for Redis operations
		cacheKey := publicCacheKey(username)
		var items []PublicInventoryItem // Slice to hold joined rows
		if rdb != nil {
			// Try to get from cache
			found, err := utils.GetCache(ctx, rdb, cacheKey, &items)
			if err == nil && found && len(items) > 0 {
				c.JSON(http.StatusOK, gin.H{"username": username, "items": items, "cached": true})
				return
			}
		}
		var user domain.User // Resolve username to the owning user
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			// Unknown username
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			writeStoreError(c, "Failed to fetch items", err)
			return
		}
		// Fetch the user's items joined with the owner's username
		err := db.Table("inventory").
			Select("inventory.item_id, inventory.item_name, inventory.category, inventory.quantity, inventory.unit_price, inventory.created_at, users.username").
			Joins("JOIN users ON users.id = inventory.user_id").
			Where("inventory.user_id = ?", user.ID).
			Order("inventory.created_at desc").
			Scan(&items).Error
		if err != nil {
			writeStoreError(c, "Failed to fetch items", err)
			return
		}
		// A user with zero items is reported as not found
		if len(items) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "No inventory found for user"})
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, items, 60*time.Second) // Cache for 60 seconds
		}
		c.JSON(http.StatusOK, gin.H{"username": username, "items": items, "cached": false})
	}
}

// UpdateItemHandler updates an item the authenticated user owns. The
// ownership check lives in the WHERE clause of the UPDATE itself, so there
// is no window between checking ownership and applying the mutation.
func UpdateItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		itemID, err := strconv.Atoi(c.Param("id")) // Parse the item id
		if err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
			return
		}
		var req ItemRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Single conditional UPDATE matching both item id and owner
		res := db.Model(&domain.InventoryItem{}).
			Where("item_id = ? AND user_id = ?", itemID, userID).
			Updates(map[string]any{
				"item_name":  req.ItemName,  // Item name
				"category":   req.Category,  // Item category
				"quantity":   req.Quantity,  // Units in stock
				"unit_price": req.UnitPrice, // Price per unit
			})
		if res.Error != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,            // User ID
				"item_id": itemID,            // Item ID
				"error":   res.Error.Error(), // Error message
			}).Error("Update failed") // Log update failure
			writeStoreError(c, "Failed to update item", res.Error)
			return
		}
		// Zero rows covers both "no such item" and "owned by someone else";
		// the two are intentionally indistinguishable to the caller
		if res.RowsAffected == 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Operation not permitted"})
			return
		}
		// Log successful update
		logrus.WithFields(logrus.Fields{
			"user_id": userID, // User ID
			"item_id": itemID, // Item ID
		}).Info("Item updated") // Log item update
		// Invalidate the owner's listing caches
		invalidateItemCaches(c, userID.(uint), c.GetString("username"))
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Item updated"})
	}
}

// DeleteItemHandler deletes an item the authenticated user owns, with the
// same atomic ownership-conditioned statement and collapsed semantics as update
func DeleteItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		itemID, err := strconv.Atoi(c.Param("id")) // Parse the item id
		if err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
			return
		}
		// Single conditional DELETE matching both item id and owner
		res := db.Where("item_id = ? AND user_id = ?", itemID, userID).Delete(&domain.InventoryItem{})
		if res.Error != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,            // User ID
				"item_id": itemID,            // Item ID
				"error":   res.Error.Error(), // Error message
			}).Error("Delete failed") // Log delete failure
			writeStoreError(c, "Failed to delete item", res.Error)
			return
		}
		// Same collapsed not-found/forbidden semantics as update
		if res.RowsAffected == 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Operation not permitted"})
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"user_id": userID, // User ID
			"item_id": itemID, // Item ID
		}).Info("Item deleted") // Log item deletion
		// Invalidate the owner's listing caches
		invalidateItemCaches(c, userID.(uint), c.GetString("username"))
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inventory_system/internal/domain"
	"inventory_system/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// openTestDB opens an in-memory SQLite database named after the test and
// applies migrations. Shared cache keeps all pooled connections on the same DB.
func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.InventoryItem{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access test db pool: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// newTestRouter wires the full route surface the way cmd/server does,
// without Redis (handlers skip caching when no client is present).
func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(cors.Default())

	r.POST("/auth/register", RegisterHandler(db))
	r.POST("/auth/login", LoginHandler(db, testSecret))

	r.GET("/inventory/:username", ListInventoryByUsernameHandler(db, nil))

	invGroup := r.Group("/inventory")
	invGroup.Use(middleware.JWTAuthMiddleware(testSecret))
	invGroup.POST("", CreateItemHandler(db))
	invGroup.GET("", ListOwnItemsHandler(db, nil))
	invGroup.PUT("/:id", UpdateItemHandler(db))
	invGroup.DELETE("/:id", DeleteItemHandler(db))

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(testSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", ListUsersHandler(db, nil))
	adminGroup.GET("/inventory", ListAllItemsHandler(db, nil))

	return r
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// registerAndLogin registers a user through the API and returns a login token.
func registerAndLogin(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{"username": username, "password": password})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{"username": username, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, w.Code, w.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("login %s: empty token", username)
	}
	return resp.Token
}

// listOwn fetches the caller's items and decodes them.
func listOwn(t *testing.T, r *gin.Engine, token string) []domain.InventoryItem {
	t.Helper()
	w := doJSON(t, r, http.MethodGet, "/inventory", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list own: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Items []domain.InventoryItem `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	return resp.Items
}

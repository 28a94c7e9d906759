package api

import (
	"context"             // For deadline sentinel
	"database/sql/driver" // For bad-connection sentinel
	"errors"              // Error inspection
	"net/http"            // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// storeErrorStatus maps a store failure to an HTTP status. Connection-level
// failures (pool exhaustion, dropped connections, statement deadlines) are
// transient and surface as 503; anything else is a 500.
func storeErrorStatus(err error) int {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeStoreError responds with a generic message; internal detail stays in the logs
func writeStoreError(c *gin.Context, msg string, err error) {
	c.JSON(storeErrorStatus(err), gin.H{"error": msg})
}

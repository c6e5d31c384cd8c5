package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/arashwinbafna/Arham-Discover-Yourself/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// credential fields that must never reach the audit trail
var secretFields = []string{"master_password", "password"}

// redactBody strips credential values from a captured JSON body before it is
// written to the append-only audit table. Non-JSON bodies (multipart uploads)
// carry no credentials and pass through unchanged.
func redactBody(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(body)
	}

	changed := false
	for _, f := range secretFields {
		if _, ok := payload[f]; ok {
			payload[f] = "[REDACTED]"
			changed = true
		}
	}
	if !changed {
		return string(body)
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(out)
}

// AuditMiddleware appends a request-level audit row for every mutating API
// call made by a logged-in user. Domain events write their own named actions
// on top of this; together they form the append-only audit trail.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		if c.Request.Method == http.MethodGet {
			return
		}

		user := CurrentUser(c)
		if user == nil {
			return
		}

		details := c.Request.Method + " " + c.Request.URL.Path
		if len(bodyBytes) > 0 && len(bodyBytes) < 1000 {
			details += " " + redactBody(bodyBytes)
		}

		log := models.AuditLog{
			Actor:   user.Username,
			Action:  "API " + c.Request.Method,
			Details: details,
			IP:      c.ClientIP(),
		}
		_ = db.Create(&log).Error
	}
}

// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/machinery-catalog/internal/models"
	"github.com/javajoker/machinery-catalog/internal/utils"
)

const maxAuditString = 256

type AuditWriter interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// AuditLog records every mutating request with the admin that made it. Request
// bodies are stored with data URLs and long strings shortened.
func AuditLog(writer AuditWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}

		var requestData map[string]interface{}
		if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
			requestBody, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			if len(requestBody) > 0 && json.Unmarshal(requestBody, &requestData) == nil {
				delete(requestData, "password")
				requestData = sanitizeAuditValue(requestData).(map[string]interface{})
			}
		}

		c.Next()

		entry := &models.AuditLog{
			Action:       c.Request.Method + " " + c.Request.URL.Path,
			ResourceType: extractResourceType(c.Request.URL.Path),
			Status:       c.Writer.Status(),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			NewValues:    models.JSONB(requestData),
		}
		if adminID, ok := c.Get("admin_id"); ok {
			if parsed, err := uuid.Parse(fmt.Sprint(adminID)); err == nil {
				entry.AdminID = &parsed
			}
		}
		resourceID := c.GetString("resource_id")
		if resourceID == "" {
			resourceID = extractResourceID(c.Request.URL.Path)
		}
		if resourceID != "" {
			if parsed, err := uuid.Parse(resourceID); err == nil {
				entry.ResourceID = &parsed
			}
		}

		ctx := context.WithoutCancel(c.Request.Context())
		go func() {
			if err := writer.Create(ctx, entry); err != nil {
				logrus.WithError(err).WithField("action", entry.Action).Error("Failed to create audit log")
			}
		}()
	}
}

func sanitizeAuditValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, inner := range t {
			t[k] = sanitizeAuditValue(inner)
		}
		return t
	case []interface{}:
		for i, inner := range t {
			t[i] = sanitizeAuditValue(inner)
		}
		return t
	case string:
		if utils.IsDataURL(t) {
			header, _, _ := strings.Cut(t, ",")
			return fmt.Sprintf("%s,<%d bytes>", header, len(t))
		}
		if len(t) > maxAuditString {
			return t[:maxAuditString] + "..."
		}
	}
	return v
}

func extractResourceType(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "v1" {
		return parts[1]
	}
	if len(parts) >= 1 {
		return parts[0]
	}
	return "unknown"
}

func extractResourceID(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for _, part := range parts {
		if _, err := uuid.Parse(part); err == nil {
			return part
		}
	}
	return ""
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).Milliseconds(),
			"ip":       c.ClientIP(),
		}
		if adminID, ok := c.Get("admin_id"); ok {
			fields["admin_id"] = adminID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logrus.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("Request processed")
		case status >= http.StatusBadRequest:
			entry.Warn("Request processed")
		default:
			entry.Info("Request processed")
		}
	}
}

// internal/middleware/i18n.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/javajoker/machinery-catalog/internal/i18n"
)

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", i18n.ParseAcceptLanguage(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

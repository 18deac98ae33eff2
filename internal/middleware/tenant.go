package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for values stored in gin.Context.
const (
	ContextKeyTenant    = "tenant"
	ContextKeyRequestID = "request_id"
)

const (
	TenantHeader   = "X-Tenant"
	TenantQuery    = "tenant"
	maxTenantBytes = 128
)

// Tenant resolves the calling tenant from the X-Tenant header or the tenant
// query parameter, falling back to defaultTenant. There is no authentication;
// the tenant is only a scope for data.
func Tenant(defaultTenant string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := strings.TrimSpace(c.GetHeader(TenantHeader))
		if tenant == "" {
			tenant = strings.TrimSpace(c.Query(TenantQuery))
		}
		if tenant == "" {
			tenant = defaultTenant
		}
		if len(tenant) > maxTenantBytes {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "tenant identifier too long",
			})
			return
		}

		c.Set(ContextKeyTenant, tenant)
		c.Next()
	}
}

// GetTenant returns the tenant set by Tenant, or "" if the middleware did not run.
func GetTenant(c *gin.Context) string {
	val, exists := c.Get(ContextKeyTenant)
	if !exists {
		return ""
	}
	tenant, ok := val.(string)
	if !ok {
		return ""
	}
	return tenant
}

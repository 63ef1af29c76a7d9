package middlewares

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/sitebooks_backend/utils"
)

const (
	HeaderCorrelationId = "x-correlation-id"
	HeaderUserId        = "x-user-id"
	HeaderUserName      = "x-user-name"
	HeaderUserRole      = "x-user-role"
)

// CorrelationMiddleware generates a correlation id once per request and echoes it back.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := strings.TrimSpace(c.GetHeader(HeaderCorrelationId))
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Header(HeaderCorrelationId, cid)
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	}
}

// ActorMiddleware copies the actor forwarded by the gateway into the request context.
// Authentication happens upstream; requests without actor headers are recorded as System.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if v := strings.TrimSpace(c.GetHeader(HeaderUserId)); v != "" {
			if id, err := strconv.Atoi(v); err == nil && id > 0 {
				ctx = utils.SetUserIdInContext(ctx, id)
			}
		}
		if v := strings.TrimSpace(c.GetHeader(HeaderUserName)); v != "" {
			ctx = utils.SetUserNameInContext(ctx, v)
		}
		if v := strings.TrimSpace(c.GetHeader(HeaderUserRole)); v != "" {
			ctx = utils.SetUserRoleInContext(ctx, v)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

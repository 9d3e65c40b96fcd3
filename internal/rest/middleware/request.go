package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/segal-ziv/smartbill/internal/types"
)

func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx = types.SetRequestID(ctx, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// OwnerMiddleware resolves the acting user from the request and scopes
// the context to them. Requests without an owner fall back to the
// default single-user account.
func OwnerMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID := c.GetHeader(types.HeaderOwnerID)
	if ownerID == "" {
		ownerID = types.DefaultOwnerID
	}

	ctx = types.SetOwnerID(ctx, ownerID)
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}

package service

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/unrolled/secure"
	"gitlab.com/dirk.krummacker/contacts-app/internal/logger"
	"go.uber.org/zap"
)

// requestIDHeader carries the request id to and from the client.
const requestIDHeader = "X-Request-ID"

// requestID makes sure that every request has an id, which is logged and
// echoed in the response. An id sent by a proxy in front of us is kept.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(logger.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// secureHeaders adds the usual security headers to every response.
func secureHeaders() gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "same-origin",
		IsDevelopment:      gin.Mode() == gin.DebugMode,
	})

	return func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			zap.L().Error("security headers rejected request", zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}

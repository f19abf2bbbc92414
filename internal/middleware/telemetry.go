package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// UserIDKey is where handlers put the signed-in user's id for logging and tracing
const UserIDKey = "user_id"

// TracingMiddleware wraps otelgin and tags the server span with idea and search attributes
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		base(c)

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if uid := c.GetString(UserIDKey); uid != "" {
			span.SetAttributes(attribute.String("user.id", uid))
		}
		if id := c.Param("id"); id != "" {
			span.SetAttributes(attribute.String("idea.id", id))
		}
		if category := c.Query("category"); category != "" {
			span.SetAttributes(attribute.String("idea.category", category))
		}
		if q := c.Query("q"); q != "" {
			span.SetAttributes(attribute.Int("search.query_length", len(q)))
		}
		if limit := c.Query("limit"); limit != "" {
			span.SetAttributes(attribute.String("query.limit", limit))
		}

		for _, ginErr := range c.Errors {
			if ginErr.Err != nil {
				span.RecordError(ginErr.Err)
				span.SetStatus(codes.Error, ginErr.Error())
			}
		}
	}
}

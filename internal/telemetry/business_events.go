package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusinessEvents provides helper methods for tracing domain-level operations,
// one level above the remote calls they are made of
type BusinessEvents struct {
	tracer trace.Tracer
}

// NewBusinessEvents creates a new business events tracer
func NewBusinessEvents() *BusinessEvents {
	return &BusinessEvents{
		tracer: otel.Tracer("business-events"),
	}
}

// ============================================================================
// IDEAS
// ============================================================================

// IdeaEventAttrs attributes for idea operations
type IdeaEventAttrs struct {
	IdeaID   string
	UserID   string
	Category string
	TagCount int
}

// TraceIdea creates a span for an idea operation ("create", "update", "view")
func (be *BusinessEvents) TraceIdea(ctx context.Context, action string, attrs IdeaEventAttrs) (context.Context, trace.Span) {
	ctx, span := be.tracer.Start(ctx, "idea."+action,
		trace.WithAttributes(
			attribute.String("idea.action", action),
		),
	)

	if attrs.IdeaID != "" {
		span.SetAttributes(attribute.String("idea.id", attrs.IdeaID))
	}
	if attrs.UserID != "" {
		span.SetAttributes(attribute.String("user.id", attrs.UserID))
	}
	if attrs.Category != "" {
		span.SetAttributes(attribute.String("idea.category", attrs.Category))
	}
	if attrs.TagCount > 0 {
		span.SetAttributes(attribute.Int("idea.tag_count", attrs.TagCount))
	}

	return ctx, span
}

// ============================================================================
// SOCIAL INTERACTIONS
// ============================================================================

// TraceInteraction creates a span for favorites, ratings and comments
func (be *BusinessEvents) TraceInteraction(ctx context.Context, actionType, ideaID, userID string) (context.Context, trace.Span) {
	ctx, span := be.tracer.Start(ctx, "social."+actionType,
		trace.WithAttributes(
			attribute.String("action.type", actionType),
			attribute.String("idea.id", ideaID),
			attribute.String("user.id", userID),
		),
	)
	return ctx, span
}

// ============================================================================
// SEARCH
// ============================================================================

// TraceSearch creates a span for title search
func (be *BusinessEvents) TraceSearch(ctx context.Context, query string, quick bool) (context.Context, trace.Span) {
	ctx, span := be.tracer.Start(ctx, "search.query",
		trace.WithAttributes(
			attribute.String("search.query", query),
			attribute.Bool("search.quick", quick),
		),
	)
	return ctx, span
}

// ============================================================================
// ONBOARDING
// ============================================================================

// TraceOnboarding creates a span for saving onboarding preferences
func (be *BusinessEvents) TraceOnboarding(ctx context.Context, userID string, focusAreas int) (context.Context, trace.Span) {
	ctx, span := be.tracer.Start(ctx, "onboarding.complete",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("onboarding.focus_areas", focusAreas),
		),
	)
	return ctx, span
}

// End records err (if any) on span and ends it
func End(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
	span.End()
}

var globalBusinessEvents *BusinessEvents

// GetBusinessEvents returns the global business events tracer
func GetBusinessEvents() *BusinessEvents {
	if globalBusinessEvents == nil {
		globalBusinessEvents = NewBusinessEvents()
	}
	return globalBusinessEvents
}

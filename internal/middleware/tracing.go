package middleware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Locals set by the routing layer and read back onto the request span.
const (
	LocalContentKind = "contentKind"
	LocalActorRole   = "actorRole"
)

// TracingMiddleware starts one server span per request. The span is renamed
// to the matched route once the handler returns, and carries the listing
// kind and the caller's role when the route resolved them.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.OriginalURL()),
				attribute.String("http.client_ip", c.IP()),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		if rid, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		c.SetUserContext(ctx)

		err := c.Next()

		span.SetName(c.Method() + " " + c.Route().Path)
		span.SetAttributes(portalAttributes(c)...)

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			span.RecordError(err)
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		return err
	}
}

func portalAttributes(c *fiber.Ctx) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if kind, ok := c.Locals(LocalContentKind).(models.ContentKind); ok {
		attrs = append(attrs, attribute.String("portal.content_kind", string(kind)))
	}
	role := "ANONYMOUS"
	if r, ok := c.Locals(LocalActorRole).(models.Role); ok && r != "" {
		role = string(r)
	}
	attrs = append(attrs, attribute.String("portal.actor_role", role))
	if uid, ok := c.Locals("userID").(uint); ok {
		attrs = append(attrs, attribute.Int64("user.id", int64(uid)))
	}
	return attrs
}

// TagContentKind marks every request through the route group as serving kind.
func TagContentKind(kind models.ContentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalContentKind, kind)
		return c.Next()
	}
}

// TagActor records the resolved caller on the request for tracing.
func TagActor(c *fiber.Ctx, actor models.Actor) {
	c.Locals(LocalActorRole, actor.Role)
}

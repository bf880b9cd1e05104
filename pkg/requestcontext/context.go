// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services and outbound clients
// read them without importing net/http.
package requestcontext

import "context"

// Context key types (unexported for encapsulation).
type (
	subjectKey       struct{}
	idTokenKey       struct{}
	correlationIDKey struct{}
	requestIDKey     struct{}
)

// WithSubject stores the authenticated caller's national identifier.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// Subject returns the authenticated caller's national identifier, or "".
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

// WithIDToken stores the raw bearer token so outbound clients can forward it.
func WithIDToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, idTokenKey{}, token)
}

// IDToken returns the raw bearer token, or "".
func IDToken(ctx context.Context) string {
	t, _ := ctx.Value(idTokenKey{}).(string)
	return t
}

// WithCorrelationID stores the correlation id that follows the request across
// every external call and onto the published record.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationID returns the correlation id, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// WithRequestID stores the optional caller-supplied request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the caller-supplied request id, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

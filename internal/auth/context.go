package auth

import "context"

type contextKey int

const subjectKey contextKey = iota

// WithSubject records the authenticated caller's token subject on the
// context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext returns the caller's token subject, or "" for an
// unauthenticated request.
func SubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey).(string)
	return subject
}

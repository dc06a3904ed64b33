package domain

import "context"

type accessTraceKey struct{}

// Gate decisions recorded in an AccessTrace.
const (
	DecisionAllowed = "allowed"
	DecisionDenied  = "denied"
	DecisionBypass  = "bypass"
)

// AccessTrace collects what the access gate decided for a single HTTP request.
// The transport puts a mutable pointer into the context before calling the gate;
// the gate fills it in; the transport reads it for response headers and the
// canonical log line.
type AccessTrace struct {
	Decision  string
	Charged   bool
	Status    string
	Remaining int
}

// NewContextWithTrace returns a context with an access trace collector.
func NewContextWithTrace(ctx context.Context) (context.Context, *AccessTrace) {
	t := &AccessTrace{Remaining: -1}
	return context.WithValue(ctx, accessTraceKey{}, t), t
}

// TraceFromContext extracts the trace collector from context. Returns nil if not set.
func TraceFromContext(ctx context.Context) *AccessTrace {
	t, _ := ctx.Value(accessTraceKey{}).(*AccessTrace)
	return t
}

// Record stores the gate outcome. Safe on a nil receiver.
func (t *AccessTrace) Record(decision string, charged bool, status string, remaining int) {
	if t == nil {
		return
	}
	t.Decision = decision
	t.Charged = charged
	t.Status = status
	t.Remaining = remaining
}

package mcp

import "maps"

// NoResultText is returned when the provider answers with zero content parts.
const NoResultText = "No result"

// ToolInvocation names a remote tool and the arguments to call it with.
type ToolInvocation struct {
	Name      string
	Arguments map[string]any
}

// NewInvocation builds an invocation that owns a copy of args.
func NewInvocation(name string, args map[string]any) ToolInvocation {
	copied := make(map[string]any, len(args))
	maps.Copy(copied, args)
	return ToolInvocation{Name: name, Arguments: copied}
}

// FailureKind classifies why a call produced no usable text.
type FailureKind string

const (
	// FailureConfig - credential or endpoint missing or unusable
	FailureConfig FailureKind = "config"
	// FailureTransport - connect, handshake or network failure
	FailureTransport FailureKind = "transport"
	// FailureRemote - the provider reported a tool error
	FailureRemote FailureKind = "remote"
	// FailureInvalid - the response could not be interpreted
	FailureInvalid FailureKind = "invalid"
)

// Result is either a success carrying text or a failure carrying a kind and reason.
type Result struct {
	ok     bool
	text   string
	kind   FailureKind
	reason string
}

// Success wraps the text returned by the provider.
func Success(text string) Result {
	return Result{ok: true, text: text}
}

// Failure reports a call that produced no usable text.
func Failure(kind FailureKind, reason string) Result {
	return Result{kind: kind, reason: reason}
}

func (r Result) OK() bool { return r.ok }
func (r Result) Text() string { return r.text }
func (r Result) Kind() FailureKind { return r.kind }
func (r Result) Reason() string { return r.reason }

// Outcome is the metrics label for the result.
func (r Result) Outcome() string {
	if r.ok {
		return "success"
	}
	return string(r.kind)
}

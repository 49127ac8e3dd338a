package common

type ContextKey int

const (
	TraceIDContextKey ContextKey = iota
	OperationContextKey
	// Add new fields _above_
	CONTEXT_KEYS_COUNT
)

// Package stub is a record-then-replay test double for SDK calls.
//
// Tests program a Registry with the requests they expect and the responses (or
// service errors) to answer them with, then hand SDK clients a StubBackend.
// Every intercepted operation is matched against the head of its queue and
// answered without touching the network. A LiveBackend built from the same
// call sites talks to the real service instead.
package stub

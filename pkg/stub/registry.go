package stub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/sdkexamples/sdkexamples/pkg/common"
)

type State int

const (
	Unprogrammed State = iota
	Programmed
	Draining
	Empty
)

func (s State) String() string {
	switch s {
	case Unprogrammed:
		return "unprogrammed"
	case Programmed:
		return "programmed"
	case Draining:
		return "draining"
	case Empty:
		return "empty"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SDK input and output structs embed unexported marker types.
var ignoreUnexported = cmp.FilterPath(func(p cmp.Path) bool {
	sf, ok := p.Last().(cmp.StructField)
	if !ok {
		return false
	}
	r, _ := utf8.DecodeRuneInString(sf.Name())
	return !unicode.IsUpper(r)
}, cmp.Ignore())

type Entry struct {
	Operation string
	Expected  any
	Outcome   Outcome
	compare   []cmp.Option
	seq       int
}

func (e *Entry) String() string {
	return fmt.Sprintf("#%d %s -> %s", e.seq, e.Operation, e.Outcome)
}

func (e *Entry) options() []cmp.Option {
	opts := make([]cmp.Option, 0, len(e.compare)+1)
	opts = append(opts, ignoreUnexported)
	return append(opts, e.compare...)
}

func (e *Entry) matches(actual any) (bool, string) {
	opts := e.options()
	if cmp.Equal(e.Expected, actual, opts...) {
		return true, ""
	}

	return false, cmp.Diff(e.Expected, actual, opts...)
}

type Option func(*Registry)

// WithGlobalOrder makes the registry answer calls strictly in programming
// order across all operations instead of per operation.
func WithGlobalOrder() Option {
	return func(r *Registry) {
		r.globalOrder = true
	}
}

// WithCompareOptions adds go-cmp options used for every entry.
func WithCompareOptions(opts ...cmp.Option) Option {
	return func(r *Registry) {
		r.compare = append(r.compare, opts...)
	}
}

type Registry struct {
	lock        sync.Mutex
	queues      map[string][]*Entry
	order       []*Entry
	compare     []cmp.Option
	globalOrder bool
	state       State
	seq         int
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		queues: make(map[string][]*Entry),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Expect programs the next response for operation. compareOpts tune matching
// of this entry only (e.g. cmpopts.IgnoreFields for generated tokens).
func (r *Registry) Expect(operation string, expected any, outcome Outcome, compareOpts ...cmp.Option) error {
	if len(operation) == 0 {
		return errEmptyOperation
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if r.state == Empty {
		return ErrRegistryDrained
	}

	r.seq++
	entry := &Entry{
		Operation: operation,
		Expected:  expected,
		Outcome:   outcome,
		compare:   append(append([]cmp.Option{}, r.compare...), compareOpts...),
		seq:       r.seq,
	}

	r.queues[operation] = append(r.queues[operation], entry)
	r.order = append(r.order, entry)

	if r.state == Unprogrammed {
		r.state = Programmed
	}

	return nil
}

func (r *Registry) head(operation string) (*Entry, error) {
	if r.globalOrder {
		if len(r.order) == 0 {
			return nil, &UnexpectedCallError{Operation: operation}
		}

		entry := r.order[0]
		if entry.Operation != operation {
			return nil, &MismatchError{Operation: operation, ExpectedOperation: entry.Operation}
		}

		return entry, nil
	}

	queue := r.queues[operation]
	if len(queue) == 0 {
		return nil, &UnexpectedCallError{Operation: operation}
	}

	return queue[0], nil
}

func (r *Registry) consume(entry *Entry) {
	queue := r.queues[entry.Operation]
	if len(queue) > 0 && queue[0] == entry {
		queue = queue[1:]
	}

	if len(queue) == 0 {
		delete(r.queues, entry.Operation)
	} else {
		r.queues[entry.Operation] = queue
	}

	for i, e := range r.order {
		if e == entry {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if len(r.order) == 0 {
		r.state = Empty
	} else {
		r.state = Draining
	}
}

// Invoke answers a call to operation with the next programmed outcome. A call
// whose parameters differ from the expectation fails with *MismatchError and
// leaves the entry in place; a call with nothing programmed fails with
// *UnexpectedCallError.
func (r *Registry) Invoke(ctx context.Context, operation string, actual any) (any, error) {
	return r.invoke(ctx, operation, actual, nil)
}

// invoke is Invoke with accept vetting the payload of a matching response
// entry; a rejected entry stays in place.
func (r *Registry) invoke(ctx context.Context, operation string, actual any, accept func(payload any) error) (any, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	entry, err := r.head(operation)
	if err != nil {
		slog.ErrorContext(ctx, "Stubbed call rejected", common.OperationAttr(operation), "state", r.state.String(), common.ErrAttr(err))
		return nil, err
	}

	if ok, diff := entry.matches(actual); !ok {
		err := &MismatchError{Operation: operation, Diff: diff}
		slog.ErrorContext(ctx, "Stubbed call parameters mismatch", common.OperationAttr(operation), "entry", entry.seq)
		return nil, err
	}

	if accept != nil && !entry.Outcome.IsError() {
		if err := accept(entry.Outcome.Payload); err != nil {
			slog.ErrorContext(ctx, "Stubbed response cannot be returned", common.OperationAttr(operation), "entry", entry.seq,
				common.ErrAttr(err))
			return nil, err
		}
	}

	r.consume(entry)

	slog.Log(ctx, common.LevelTrace, "Answered stubbed call", common.OperationAttr(operation), "entry", entry.seq,
		"outcome", entry.Outcome.String(), "pending", len(r.order))

	if entry.Outcome.IsError() {
		return nil, entry.Outcome.Err()
	}

	return entry.Outcome.Payload, nil
}

func (r *Registry) Pending() int {
	r.lock.Lock()
	defer r.lock.Unlock()

	return len(r.order)
}

func (r *Registry) State() State {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.state
}

// AssertDrained returns *PendingError if programmed entries were never consumed.
func (r *Registry) AssertDrained() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if len(r.order) == 0 {
		return nil
	}

	entries := make([]string, 0, len(r.order))
	for _, e := range r.order {
		entries = append(entries, e.String())
	}

	return &PendingError{Entries: entries}
}

// Reset drops all entries and returns the registry to Unprogrammed.
func (r *Registry) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.queues = make(map[string][]*Entry)
	r.order = nil
	r.state = Unprogrammed
	r.seq = 0
}

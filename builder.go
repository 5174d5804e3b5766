package chromez

import (
	"io"
	"os"
	"time"

	"fortio.org/safecast"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

const (
	// DefaultOutput is the trace file written when no output is configured.
	DefaultOutput = "trace.json"
	// DefaultBufferSize is the write buffer in front of the output.
	DefaultBufferSize = 64 * 1024
	// DefaultQueueCapacity is the initial capacity of the event queue.
	DefaultQueueCapacity = 1024
)

// Builder configures a tracing session.
// Methods mutate and return the receiver for chaining.
type Builder struct {
	start         time.Time
	clock         clockz.Clock
	log           *zap.Logger
	panicHook     func(r any)
	writer        io.Writer
	output        string
	category      string
	asyncCategory string
	pid           uint64
	bufferSize    int
	queueCapacity int
}

// New returns a Builder with the defaults: start now on the real clock,
// write to trace.json in the working directory.
func New() *Builder {
	return &Builder{
		clock:  clockz.RealClock,
		output: DefaultOutput,
	}
}

// WithClock sets the clock timestamps are read from.
// Enables clock injection for deterministic testing.
func (b *Builder) WithClock(clock clockz.Clock) *Builder {
	if clock != nil {
		b.clock = clock
	}
	return b
}

// WithStart sets the instant timestamps are relative to. Defaults to the
// clock's now at Init.
func (b *Builder) WithStart(start time.Time) *Builder {
	b.start = start
	return b
}

// WithOutput sets the path of the trace file.
func (b *Builder) WithOutput(path string) *Builder {
	if path != "" {
		b.output = path
	}
	return b
}

// WithWriter sends the trace to w instead of a file. w is not closed.
func (b *Builder) WithWriter(w io.Writer) *Builder {
	b.writer = w
	return b
}

// WithProcessID overrides the pid stamped on events.
func (b *Builder) WithProcessID(pid uint64) *Builder {
	b.pid = pid
	return b
}

// WithCategory sets the category of events recorded without one.
func (b *Builder) WithCategory(category string) *Builder {
	b.category = category
	return b
}

// WithAsyncCategory sets the category written for async events that have
// none. Defaults to "async".
func (b *Builder) WithAsyncCategory(category string) *Builder {
	b.asyncCategory = category
	return b
}

// WithBufferSize sets the size of the output write buffer.
func (b *Builder) WithBufferSize(size int) *Builder {
	b.bufferSize = size
	return b
}

// WithQueueCapacity sets the initial capacity of the event queue. The queue
// grows beyond it as needed.
func (b *Builder) WithQueueCapacity(capacity int) *Builder {
	b.queueCapacity = capacity
	return b
}

// WithLogger sets the logger for session lifecycle and writer failures.
func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.log = log
	return b
}

// WithPanicHook sets a function called with the recovered value if the
// writer goroutine panics.
func (b *Builder) WithPanicHook(hook func(r any)) *Builder {
	b.panicHook = hook
	return b
}

func (b *Builder) session() *session {
	s := &session{
		start:      b.start,
		clock:      b.clock,
		collector:  newCollector(b.queueCapacity),
		log:        b.log,
		panicHook:  b.panicHook,
		writer:     b.writer,
		output:     b.output,
		category:   b.category,
		enc:        newEncoder(b.asyncCategory),
		pid:        b.pid,
		bufferSize: b.bufferSize,
	}
	if s.clock == nil {
		s.clock = clockz.RealClock
	}
	if s.start.IsZero() {
		s.start = s.clock.Now()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.output == "" {
		s.output = DefaultOutput
	}
	if s.pid == 0 {
		s.pid = processID()
	}
	return s
}

// Init starts the process-wide session and its writer goroutine.
// It panics with ErrAlreadyInitialized if a session is already active, or
// if the writer of a released session is still draining: running two
// sessions at once is a programming error.
//
// The returned Guard must be closed exactly where tracing should end.
func (b *Builder) Init() (Context, *Guard) {
	s := b.session()
	if !running.CompareAndSwap(nil, s) {
		panic(ErrAlreadyInitialized)
	}
	if !active.CompareAndSwap(nil, s) {
		running.CompareAndSwap(s, nil)
		panic(ErrAlreadyInitialized)
	}

	go s.collector.start(s)

	s.log.Debug("trace session started",
		zap.String("output", s.describeOutput()),
		zap.Uint64("pid", s.pid),
		zap.Time("start", s.start),
	)

	return Context{s: s}, &Guard{s: s}
}

func processID() uint64 {
	pid, err := safecast.Conv[uint64](os.Getpid())
	if err != nil {
		return 0
	}
	return pid
}

// Package operator coordinates the open document and the shared current
// time of all synchronized views.
//
// An Operator is owned by the UI goroutine. Every method except
// CurrentTime, Document and Scale must be called from it; background work
// reaches it through a Dispatcher.
package operator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mgpai22/freespeech/internal/document"
	"github.com/mgpai22/freespeech/internal/logging"
	"github.com/mgpai22/freespeech/internal/observe"
)

// ErrNoDocument is returned when an operation needs an open document.
var ErrNoDocument = errors.New("no document open")

// DefaultFollowInterval is the leader polling period.
const DefaultFollowInterval = 15 * time.Millisecond

// Synchronized is a view that shares the operator's current time. Values
// must be comparable; pointers are the normal choice.
type Synchronized interface {
	CurrentTime() time.Duration
	SetCurrentTime(time.Duration)
}

// Dispatcher runs fn on the UI goroutine and waits for it.
type Dispatcher interface {
	Dispatch(ctx context.Context, fn func()) error
}

// Storage loads and saves documents.
type Storage interface {
	Load(pathname string) (*document.Document, error)
	Save(doc *document.Document) error
}

// Option configures an Operator.
type Option func(*Operator)

// WithLogger sets the operator logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *Operator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStorage replaces the file store.
func WithStorage(storage Storage) Option {
	return func(o *Operator) {
		if storage != nil {
			o.storage = storage
		}
	}
}

// WithFollowInterval sets the leader polling period. Zero polls as fast as
// the dispatcher accepts work.
func WithFollowInterval(interval time.Duration) Option {
	return func(o *Operator) {
		if interval >= 0 {
			o.followInterval = interval
		}
	}
}

// WithScale sets the initial timeline scale.
func WithScale(scale *Scale) Option {
	return func(o *Operator) {
		if scale != nil {
			o.scale = scale
		}
	}
}

// Operator holds the current document, the current time and the set of
// synchronized views.
type Operator struct {
	dispatcher     Dispatcher
	storage        Storage
	logger         *logging.Logger
	followInterval time.Duration
	scale          *Scale

	mu          sync.Mutex
	doc         *document.Document
	currentTime time.Duration
	listeners   []Synchronized
	registered  map[Synchronized]struct{}
	leader      Synchronized
	following   *followTask

	newDocument   observe.Event[*document.Document]
	openDocument  observe.Event[*document.Document]
	closeDocument observe.Event[*document.Document]
}

// New returns an operator with no document open.
func New(dispatcher Dispatcher, opts ...Option) *Operator {
	o := &Operator{
		dispatcher:     dispatcher,
		storage:        document.FileStore{},
		logger:         logging.Nop(),
		followInterval: DefaultFollowInterval,
		scale:          DefaultScale(),
		registered:     make(map[Synchronized]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Scale returns the timeline scale.
func (o *Operator) Scale() *Scale {
	return o.scale
}

// CurrentTime returns the shared playback position.
func (o *Operator) CurrentTime() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.currentTime
}

// SetCurrentTime updates the shared time and pushes it to every registered
// view except origin. Setting the current value again does nothing.
func (o *Operator) SetCurrentTime(value time.Duration, origin Synchronized) {
	o.mu.Lock()
	if value == o.currentTime {
		o.mu.Unlock()
		return
	}
	o.currentTime = value
	targets := make([]Synchronized, 0, len(o.listeners))
	for _, l := range o.listeners {
		if origin != nil && l == origin {
			continue
		}
		targets = append(targets, l)
	}
	o.mu.Unlock()

	for _, l := range targets {
		l.SetCurrentTime(value)
	}
}

// AddListener registers a view. Registering the same view twice is a no-op.
func (o *Operator) AddListener(l Synchronized) {
	if l == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.registered[l]; ok {
		return
	}
	o.registered[l] = struct{}{}
	o.listeners = append(o.listeners, l)
}

// RemoveListener unregisters a view.
func (o *Operator) RemoveListener(l Synchronized) {
	if l == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.registered[l]; !ok {
		return
	}
	delete(o.registered, l)
	for i, existing := range o.listeners {
		if existing == l {
			o.listeners = append(o.listeners[:i:i], o.listeners[i+1:]...)
			break
		}
	}
}

// Listeners returns the registered views in registration order.
func (o *Operator) Listeners() []Synchronized {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Synchronized(nil), o.listeners...)
}

// Leader returns the view whose time is followed, or nil.
func (o *Operator) Leader() Synchronized {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.leader
}

// SetLeader designates the view to follow. An active follow task keeps
// polling the leader it started with.
func (o *Operator) SetLeader(l Synchronized) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.leader = l
}

// Document returns the open document, or nil.
func (o *Operator) Document() *document.Document {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.doc
}

// OnNewDocument registers fn to run after NewDocument.
func (o *Operator) OnNewDocument(fn func(*document.Document)) func() {
	return o.newDocument.Subscribe(fn)
}

// OnOpenDocument registers fn to run after a successful OpenDocument.
func (o *Operator) OnOpenDocument(fn func(*document.Document)) func() {
	return o.openDocument.Subscribe(fn)
}

// OnCloseDocument registers fn to run after a document is closed. fn
// receives the closed document.
func (o *Operator) OnCloseDocument(fn func(*document.Document)) func() {
	return o.closeDocument.Subscribe(fn)
}

// NewDocument closes the current document and opens an empty one.
func (o *Operator) NewDocument(name string) *document.Document {
	o.CloseDocument()

	doc := document.New(name)
	o.mu.Lock()
	o.doc = doc
	o.mu.Unlock()

	o.logger.Debugw("Created document", "name", doc.Name)
	o.newDocument.Emit(doc)
	return doc
}

// OpenDocument closes the current document and loads pathname. On failure
// no document is open.
func (o *Operator) OpenDocument(pathname string) error {
	o.CloseDocument()

	doc, err := o.storage.Load(pathname)
	if err != nil {
		o.logger.Warnw("Failed to open document", "path", pathname, "error", err)
		return fmt.Errorf("open document %s: %w", pathname, err)
	}

	o.mu.Lock()
	o.doc = doc
	o.mu.Unlock()

	o.logger.Infow("Opened document",
		"path", doc.Pathname(),
		"tracks", doc.LineCount(),
		"texts", len(doc.Texts()),
	)
	o.openDocument.Emit(doc)
	return nil
}

// CloseDocument stops following the leader and closes the open document.
// It does nothing when no document is open.
func (o *Operator) CloseDocument() {
	o.StopFollowingLeader()

	o.mu.Lock()
	doc := o.doc
	o.doc = nil
	o.mu.Unlock()

	if doc == nil {
		return
	}

	o.logger.Debugw("Closed document", "name", doc.Name)
	o.closeDocument.Emit(doc)
	doc.Close()
}

// Save writes doc, or the open document when doc is nil.
func (o *Operator) Save(doc *document.Document) error {
	if doc == nil {
		doc = o.Document()
	}
	if doc == nil {
		return ErrNoDocument
	}
	if err := o.storage.Save(doc); err != nil {
		return fmt.Errorf("save document %s: %w", doc.Pathname(), err)
	}
	o.logger.Infow("Saved document", "path", doc.Pathname())
	return nil
}

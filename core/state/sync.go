package state

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/JoongWonSeo/ws-sync/core/keyscope"
	"github.com/JoongWonSeo/ws-sync/core/schema"
	"github.com/JoongWonSeo/ws-sync/core/session"
	"github.com/JoongWonSeo/ws-sync/pkg/async"
	"github.com/JoongWonSeo/ws-sync/pkg/logger"
)

// Sync keeps one target object synchronized with the client of a Session.
type Sync struct {
	target  any
	targetV reflect.Value
	key     string
	session *session.Session
	logger  *slog.Logger
	alias   schema.AliasFunc

	attrs  []*attribute
	byWire map[string]*attribute

	sendOnInit    bool
	validateOnSet bool
	taskExposure  string

	actions     map[string]*remoteBinding
	tasks       map[string]*remoteBinding
	taskCancels map[string]func(context.Context) error

	runningMu    sync.Mutex
	running      map[string]*async.Handle
	runningOrder []string

	stateMu    sync.Mutex
	snapshot   map[string]any
	lastSync   time.Time
	closed     bool
	removeInit func()
}

// attribute is one observed field with its resolved wire name.
type attribute struct {
	field schema.Field
	wire  string
}

// remoteBinding is one action or task handler with its kwargs codec.
type remoteBinding struct {
	name   string
	codec  *schema.KwargsCodec // nil for handlers without params
	invoke func(ctx context.Context, params reflect.Value) error
}

// New registers target for synchronization under key and binds it to the
// Session carried by ctx. The key is prefixed with the current key scope.
// An empty key defaults to the target's type name.
//
// By default all exported struct fields are observed; see Include, Exclude
// and the other options to shape the observed set, aliasing, and remote
// handlers. The returned Sync already owns its event registrations; call
// Close to release them.
func New(ctx context.Context, target any, key string, opts ...Option) (*Sync, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	targetV := reflect.ValueOf(target)
	if targetV.Kind() != reflect.Pointer || targetV.IsNil() || targetV.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: got %T", ErrNotPointer, target)
	}

	sess := session.FromContext(ctx)
	if sess == nil {
		return nil, session.ErrNoSession
	}

	if key == "" {
		key = targetV.Elem().Type().Name()
	}
	key = keyscope.Apply(ctx, key)

	s := &Sync{
		target:        target,
		targetV:       targetV,
		key:           key,
		session:       sess,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		sendOnInit:    cfg.sendOnInit,
		validateOnSet: cfg.validateOnSet,
		byWire:        map[string]*attribute{},
		actions:       map[string]*remoteBinding{},
		tasks:         map[string]*remoteBinding{},
		taskCancels:   map[string]func(context.Context) error{},
		running:       map[string]*async.Handle{},
	}
	if cfg.logger != nil {
		s.logger = cfg.logger
	}

	if err := s.resolveAlias(cfg); err != nil {
		return nil, err
	}
	if err := s.resolveRemoteHandlers(cfg); err != nil {
		return nil, err
	}
	if err := s.resolveAttributes(cfg); err != nil {
		return nil, err
	}

	if cfg.exposeTasks {
		s.taskExposure = cfg.taskExposure
		if s.taskExposure == "" {
			s.taskExposure = s.alias("running_tasks")
		}
	}

	s.logger.Debug("syncing attributes",
		logger.Component("sync"), logger.Key(s.key),
		slog.Int("attributes", len(s.attrs)),
		slog.Int("actions", len(s.actions)),
		slog.Int("tasks", len(s.tasks)))

	s.register()

	snap, err := s.computeSnapshot()
	if err != nil {
		s.deregister()
		return nil, err
	}
	s.snapshot = snap

	return s, nil
}

// Key returns the fully prefixed sync key.
func (s *Sync) Key() string { return s.key }

// Target returns the synchronized object.
func (s *Sync) Target() any { return s.target }

// resolveAlias derives the attribute-to-wire aliasing. Model targets carry
// their aliasing in json tags, so alias configuration is rejected for them.
func (s *Sync) resolveAlias(cfg *config) error {
	model := schema.IsModel(s.targetV.Type())
	if model && cfg.camel != nil {
		return ErrModelAlias
	}
	if model && len(cfg.includeAs) > 0 {
		return ErrModelAlias
	}

	if cfg.camel != nil && *cfg.camel {
		s.alias = schema.ToCamel
	} else {
		s.alias = schema.Identity
	}
	return nil
}

// resolveRemoteHandlers unions method-scan discoveries with explicit
// registrations; explicit registrations win.
func (s *Sync) resolveRemoteHandlers(cfg *config) error {
	if err := s.scanRemoteMethods(); err != nil {
		return err
	}

	for _, p := range cfg.actions {
		b, err := p.build()
		if err != nil {
			return fmt.Errorf("action %s: %w", p.name, err)
		}
		s.actions[p.name] = b
	}
	for _, p := range cfg.tasks {
		b, err := p.build()
		if err != nil {
			return fmt.Errorf("task %s: %w", p.name, err)
		}
		s.tasks[p.name] = b
	}
	for name, fn := range cfg.taskCancels {
		s.taskCancels[name] = fn
	}
	return nil
}

// resolveAttributes computes the observed attribute set and wire names.
func (s *Sync) resolveAttributes(cfg *config) error {
	for _, name := range cfg.include {
		if slices.Contains(cfg.exclude, name) {
			return fmt.Errorf("%w: %s", ErrIncludeExcludeOverlap, name)
		}
	}

	fields, err := schema.FieldsOf(s.targetV.Type())
	if err != nil {
		return err
	}

	byName := make(map[string]schema.Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
		byName[f.GoName] = f
	}

	excluded := func(f schema.Field) bool {
		return slices.Contains(cfg.exclude, f.Name) || slices.Contains(cfg.exclude, f.GoName)
	}

	if cfg.syncAll {
		for _, f := range fields {
			if excluded(f) {
				continue
			}
			s.addAttribute(f, f.WireName(s.alias))
		}
	} else {
		for _, name := range cfg.include {
			f, ok := byName[name]
			if !ok {
				cf, err := schema.ComputedField(s.targetV.Type(), name)
				if err != nil {
					return fmt.Errorf("include %q: %w", name, err)
				}
				f = cf
			}
			wire := f.WireName(s.alias)
			if custom, ok := cfg.includeAs[name]; ok {
				wire = custom
			}
			s.addAttribute(f, wire)
		}
	}

	for _, name := range cfg.computed {
		if slices.Contains(cfg.exclude, name) {
			continue
		}
		f, err := schema.ComputedField(s.targetV.Type(), name)
		if err != nil {
			return err
		}
		s.addAttribute(f, f.WireName(s.alias))
	}

	// Excludes must refer to existing attributes, catching typos early.
	for _, name := range cfg.exclude {
		if _, ok := byName[name]; !ok {
			if _, err := schema.ComputedField(s.targetV.Type(), name); err != nil {
				return fmt.Errorf("exclude %q: %w", name, schema.ErrUnknownAttribute)
			}
		}
	}

	return nil
}

func (s *Sync) addAttribute(f schema.Field, wire string) {
	if existing, ok := s.byWire[wire]; ok && existing.field.GoName == f.GoName {
		return
	}
	a := &attribute{field: f, wire: wire}
	s.attrs = append(s.attrs, a)
	s.byWire[wire] = a
}

// register installs the six event handlers and, when send-on-init is set,
// the init handler.
func (s *Sync) register() {
	s.session.RegisterEvent(GetEvent(s.key), s.handleGet)
	s.session.RegisterEvent(SetEvent(s.key), s.handleSet)
	s.session.RegisterEvent(PatchEvent(s.key), s.handlePatch)
	s.session.RegisterEvent(ActionEvent(s.key), s.handleAction)
	s.session.RegisterEvent(TaskStartEvent(s.key), s.handleTaskStart)
	s.session.RegisterEvent(TaskCancelEvent(s.key), s.handleTaskCancel)
	if s.sendOnInit {
		s.removeInit = s.session.RegisterInit(s.sendState)
	}
}

func (s *Sync) deregister() {
	s.session.DeregisterEvent(GetEvent(s.key))
	s.session.DeregisterEvent(SetEvent(s.key))
	s.session.DeregisterEvent(PatchEvent(s.key))
	s.session.DeregisterEvent(ActionEvent(s.key))
	s.session.DeregisterEvent(TaskStartEvent(s.key))
	s.session.DeregisterEvent(TaskCancelEvent(s.key))
	if s.removeInit != nil {
		s.removeInit()
		s.removeInit = nil
	}
}

// Close releases the Sync: it removes all event and init registrations and
// cancels any running tasks. Close is idempotent; after it, outbound syncs
// become no-ops.
func (s *Sync) Close() {
	s.stateMu.Lock()
	if s.closed {
		s.stateMu.Unlock()
		return
	}
	s.closed = true
	s.stateMu.Unlock()

	s.deregister()

	s.runningMu.Lock()
	handles := make([]*async.Handle, 0, len(s.running))
	for _, h := range s.running {
		handles = append(handles, h)
	}
	s.runningMu.Unlock()
	for _, h := range handles {
		h.Cancel()
	}
}

func (s *Sync) isClosed() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.closed
}

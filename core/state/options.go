package state

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/JoongWonSeo/ws-sync/core/schema"
)

// Option configures a Sync at construction.
type Option func(*config)

type config struct {
	syncAll   bool
	include   []string
	includeAs map[string]string
	computed  []string
	exclude   []string

	camel         *bool
	sendOnInit    bool
	exposeTasks   bool
	taskExposure  string
	validateOnSet bool
	logger        *slog.Logger

	actions     []pendingBinding
	tasks       []pendingBinding
	taskCancels map[string]func(context.Context) error
}

type pendingBinding struct {
	name  string
	build func() (*remoteBinding, error)
}

func defaultConfig() *config {
	return &config{
		syncAll:     true,
		sendOnInit:  true,
		includeAs:   map[string]string{},
		taskCancels: map[string]func(context.Context) error{},
	}
}

// Include observes only the named attributes instead of all of them.
// Names may be snake_case attribute names, Go field names, or getter method
// names (computed attributes).
func Include(names ...string) Option {
	return func(c *config) {
		c.syncAll = false
		c.include = append(c.include, names...)
	}
}

// IncludeAs observes one attribute under a custom wire name.
// Not allowed for model targets, whose json tags are authoritative.
func IncludeAs(attr, wire string) Option {
	return func(c *config) {
		c.syncAll = false
		c.include = append(c.include, attr)
		c.includeAs[attr] = wire
	}
}

// Computed additionally observes the named getter methods as computed
// attributes. A matching Set<Name> method makes one writable.
func Computed(names ...string) Option {
	return func(c *config) {
		c.computed = append(c.computed, names...)
	}
}

// Exclude removes attributes from all-attributes observation.
func Exclude(names ...string) Option {
	return func(c *config) {
		c.exclude = append(c.exclude, names...)
	}
}

// ToCamelCase converts attribute names to camelCase on the wire.
// Not allowed for model targets, whose json tags are authoritative.
func ToCamelCase() Option {
	on := true
	return func(c *config) {
		c.camel = &on
	}
}

// SendOnInit controls whether the full state is pushed to every new
// connection. Enabled by default.
func SendOnInit(enabled bool) Option {
	return func(c *config) {
		c.sendOnInit = enabled
	}
}

// ExposeRunningTasks publishes the list of currently running task names as
// part of the synced state, under the aliased "running_tasks" wire name.
func ExposeRunningTasks() Option {
	return func(c *config) {
		c.exposeTasks = true
	}
}

// ExposeRunningTasksAs publishes the running task names under a custom wire
// name.
func ExposeRunningTasksAs(wire string) Option {
	return func(c *config) {
		c.exposeTasks = true
		c.taskExposure = wire
	}
}

// ValidateOnSet applies `validate` tag rules when inbound SET/PATCH values
// are assigned. Without it only type coercion applies.
func ValidateOnSet() Option {
	return func(c *config) {
		c.validateOnSet = true
	}
}

// WithLogger sets the structured logger. Defaults to a discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithAction registers an action handler taking a params struct. The params
// are decoded and validated from the action's kwargs before the handler runs.
// Explicit registrations win over method-scan discoveries of the same name.
func WithAction[P any](name string, fn func(context.Context, P) error) Option {
	return func(c *config) {
		c.actions = append(c.actions, pendingBinding{name: name, build: func() (*remoteBinding, error) {
			return bindTyped(name, fn)
		}})
	}
}

// WithActionNoArgs registers an action handler without parameters.
func WithActionNoArgs(name string, fn func(context.Context) error) Option {
	return func(c *config) {
		c.actions = append(c.actions, pendingBinding{name: name, build: func() (*remoteBinding, error) {
			return bindNoArgs(name, fn), nil
		}})
	}
}

// WithTask registers a task handler taking a params struct. The handler runs
// on its own goroutine and must return promptly when its context is
// cancelled.
func WithTask[P any](name string, fn func(context.Context, P) error) Option {
	return func(c *config) {
		c.tasks = append(c.tasks, pendingBinding{name: name, build: func() (*remoteBinding, error) {
			return bindTyped(name, fn)
		}})
	}
}

// WithTaskNoArgs registers a task handler without parameters.
func WithTaskNoArgs(name string, fn func(context.Context) error) Option {
	return func(c *config) {
		c.tasks = append(c.tasks, pendingBinding{name: name, build: func() (*remoteBinding, error) {
			return bindNoArgs(name, fn), nil
		}})
	}
}

// WithTaskCancel registers a handler invoked after the named task has been
// cancelled.
func WithTaskCancel(name string, fn func(context.Context) error) Option {
	return func(c *config) {
		c.taskCancels[name] = fn
	}
}

func bindTyped[P any](name string, fn func(context.Context, P) error) (*remoteBinding, error) {
	codec, err := schema.KwargsFor(reflect.TypeOf(*new(P)))
	if err != nil {
		return nil, err
	}
	return &remoteBinding{
		name:  name,
		codec: codec,
		invoke: func(ctx context.Context, params reflect.Value) error {
			return fn(ctx, params.Interface().(P))
		},
	}, nil
}

func bindNoArgs(name string, fn func(context.Context) error) *remoteBinding {
	return &remoteBinding{
		name: name,
		invoke: func(ctx context.Context, _ reflect.Value) error {
			return fn(ctx)
		},
	}
}

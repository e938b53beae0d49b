package state

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/JoongWonSeo/ws-sync/core/schema"
	"github.com/JoongWonSeo/ws-sync/pkg/logger"
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// scanRemoteMethods discovers remote handlers on the target's method set by
// naming convention: ActionXxx, TaskXxx, and TaskCancelXxx methods become
// remote handlers named with the SCREAMING_SNAKE form of Xxx. A matching
// method must take a context and optionally a params struct, and return
// error; anything else under a remote prefix is a developer error and fails
// construction.
func (s *Sync) scanRemoteMethods() error {
	t := s.targetV.Type()

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}

		switch {
		case strings.HasPrefix(m.Name, "TaskCancel") && len(m.Name) > len("TaskCancel"):
			name := schema.ToScreamingSnake(strings.TrimPrefix(m.Name, "TaskCancel"))
			fn, err := s.bindCancelMethod(m)
			if err != nil {
				return err
			}
			s.taskCancels[name] = fn

		case strings.HasPrefix(m.Name, "Task") && len(m.Name) > len("Task"):
			name := schema.ToScreamingSnake(strings.TrimPrefix(m.Name, "Task"))
			b, err := s.bindMethod(name, m)
			if err != nil {
				return err
			}
			s.tasks[name] = b

		case strings.HasPrefix(m.Name, "Action") && len(m.Name) > len("Action"):
			name := schema.ToScreamingSnake(strings.TrimPrefix(m.Name, "Action"))
			b, err := s.bindMethod(name, m)
			if err != nil {
				return err
			}
			s.actions[name] = b
		}
	}
	return nil
}

// bindMethod builds a binding for a remote method: func(ctx) error or
// func(ctx, P) error with P a struct.
func (s *Sync) bindMethod(name string, m reflect.Method) (*remoteBinding, error) {
	mt := m.Type // includes the receiver at In(0)
	if mt.NumOut() != 1 || !mt.Out(0).Implements(errType) ||
		mt.NumIn() < 2 || mt.NumIn() > 3 || mt.In(1) != ctxType {
		return nil, fmt.Errorf("%w: %s must be func(context.Context[, Params]) error", schema.ErrInvalidHandler, m.Name)
	}

	mv := s.targetV.Method(m.Index)

	if mt.NumIn() == 2 {
		return &remoteBinding{
			name: name,
			invoke: func(ctx context.Context, _ reflect.Value) error {
				return callErr(mv, reflect.ValueOf(ctx))
			},
		}, nil
	}

	codec, err := schema.KwargsFor(mt.In(2))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Name, err)
	}
	return &remoteBinding{
		name:  name,
		codec: codec,
		invoke: func(ctx context.Context, params reflect.Value) error {
			return callErr(mv, reflect.ValueOf(ctx), params)
		},
	}, nil
}

// bindCancelMethod builds a cancel hook: func(ctx) error.
func (s *Sync) bindCancelMethod(m reflect.Method) (func(context.Context) error, error) {
	mt := m.Type
	if mt.NumOut() != 1 || !mt.Out(0).Implements(errType) || mt.NumIn() != 2 || mt.In(1) != ctxType {
		return nil, fmt.Errorf("%w: %s must be func(context.Context) error", schema.ErrInvalidHandler, m.Name)
	}
	mv := s.targetV.Method(m.Index)
	return func(ctx context.Context) error {
		return callErr(mv, reflect.ValueOf(ctx))
	}, nil
}

func callErr(fn reflect.Value, args ...reflect.Value) error {
	out := fn.Call(args)
	if err, ok := out[0].Interface().(error); ok && err != nil {
		return err
	}
	return nil
}

// decodeCall splits an inbound {type, ...kwargs} payload.
func decodeCall(data any) (string, map[string]json.RawMessage, error) {
	raw, ok := data.(json.RawMessage)
	if !ok {
		return "", nil, fmt.Errorf("state: call expects a JSON object, got %T", data)
	}

	var kwargs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &kwargs); err != nil {
		return "", nil, err
	}

	var name string
	if rawType, ok := kwargs["type"]; ok {
		if err := json.Unmarshal(rawType, &name); err != nil {
			return "", nil, err
		}
	}
	delete(kwargs, "type")
	return name, kwargs, nil
}

// handleAction dispatches one inbound action: validate the kwargs through
// the action's cached codec and invoke the handler. The handler runs inside
// the Session's receive loop, so actions are serialized per Session.
func (s *Sync) handleAction(ctx context.Context, data any) error {
	name, kwargs, err := decodeCall(data)
	if err != nil {
		return err
	}

	binding, ok := s.actions[name]
	if !ok {
		s.logger.Warn("no handler for action", logger.Key(s.key), logger.Action(name))
		return nil
	}

	params, err := s.decodeParams(binding, kwargs)
	if err != nil {
		return err
	}
	return binding.invoke(ctx, params)
}

func (s *Sync) decodeParams(b *remoteBinding, kwargs map[string]json.RawMessage) (reflect.Value, error) {
	if b.codec == nil {
		return reflect.Value{}, nil
	}
	return b.codec.Decode(kwargs, s.alias)
}

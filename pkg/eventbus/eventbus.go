package eventbus

import (
	stderrors "errors"
	"reflect"
	"sync"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

type EventBus interface {
	Publish(args ...any)
	Subscribe(handler any)
	Unsubscribe(handler any)
	Clear()
	SubscribersCount() int
}

// EventBusWithError lets a publisher learn about handler failures.
type EventBusWithError interface {
	EventBus
	PublishE(args ...any) error
}

var (
	ErrNoSubscribers        = errors.New("no matching subscribers")
	ErrInvalidHandlerReturn = errors.New("invalid handler return signature")
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type subscriber struct {
	handler any
	fn      reflect.Value
}

type publisher struct {
	log *logrus.Logger

	mu          sync.RWMutex
	subscribers []subscriber
}

func NewEventPublisher(log *logrus.Logger) EventBusWithError {
	return &publisher{log: log}
}

// MatchSignature reports whether handler can be called with args.
func MatchSignature(handler any, args []any) bool {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Func || t.NumIn() != len(args) {
		return false
	}
	for i, arg := range args {
		param := t.In(i)
		if arg == nil {
			switch param.Kind() {
			case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map:
				continue
			default:
				return false
			}
		}
		if !reflect.TypeOf(arg).AssignableTo(param) {
			return false
		}
	}
	return true
}

func callArgs(fn reflect.Value, args []any) []reflect.Value {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(fn.Type().In(i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}
	return in
}

func (p *publisher) matching(args []any) []subscriber {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []subscriber
	for _, s := range p.subscribers {
		if MatchSignature(s.handler, args) {
			out = append(out, s)
		}
	}
	return out
}

// Publish calls every matching handler. Handler panics are logged and do not
// reach the publisher.
func (p *publisher) Publish(args ...any) {
	subs := p.matching(args)
	if len(subs) == 0 {
		if p.log != nil {
			p.log.WithField("event", describe(args)).Debug("eventbus: no matching subscribers")
		}
		return
	}
	for _, s := range subs {
		if err := p.invoke(s, args); err != nil && p.log != nil {
			p.log.WithError(err).Error("eventbus: handler failed")
		}
	}
}

func (p *publisher) PublishE(args ...any) error {
	subs := p.matching(args)
	if len(subs) == 0 {
		return ErrNoSubscribers
	}
	var errs []error
	for _, s := range subs {
		if err := p.invoke(s, args); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (p *publisher) invoke(s subscriber, args []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("eventbus: handler %s panicked: %v", s.fn.Type(), r)
		}
	}()
	out := s.fn.Call(callArgs(s.fn, args))
	switch {
	case len(out) == 0:
		return nil
	case len(out) > 1:
		return errors.Wrapf(ErrInvalidHandlerReturn, "handler %s returned %d values", s.fn.Type(), len(out))
	case out[0].Type() != errorType:
		return errors.Wrapf(ErrInvalidHandlerReturn, "handler %s returns %s", s.fn.Type(), out[0].Type())
	case out[0].IsNil():
		return nil
	default:
		return out[0].Interface().(error)
	}
}

func (p *publisher) Subscribe(handler any) {
	fn := reflect.ValueOf(handler)
	if fn.Kind() != reflect.Func {
		panic("eventbus: handler must be a function")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, subscriber{handler: handler, fn: fn})
}

// Unsubscribe removes handler, compared by function pointer.
func (p *publisher) Unsubscribe(handler any) {
	ptr := reflect.ValueOf(handler).Pointer()
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.subscribers {
		if s.fn.Pointer() == ptr {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			return
		}
	}
}

func (p *publisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = nil
}

func (p *publisher) SubscribersCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers)
}

func describe(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			out[i] = "nil"
			continue
		}
		out[i] = reflect.TypeOf(a).String()
	}
	return out
}

package application

import (
	"reflect"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hotelstaff/roster/pkg/eventbus"
)

type Controller interface {
	Register(r *mux.Router)
	Key() string
}

type Module interface {
	Name() string
	Register(app Application) error
}

// Application is the service registry and HTTP surface modules plug into.
type Application interface {
	Logger() *logrus.Logger
	EventPublisher() eventbus.EventBus
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
	Services() map[reflect.Type]interface{}
	Closers() []Closer
	RegisterClosers(closers ...Closer)
}

// Closer is released when the application shuts down.
type Closer interface {
	Close()
}

// CloserFunc adapts a plain function to Closer.
type CloserFunc func()

func (f CloserFunc) Close() { f() }

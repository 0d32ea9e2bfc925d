package services

import (
	"sort"
	"strings"

	"github.com/hotelstaff/roster/pkg/eventbus"
)

// ValidationError carries per-field messages for a rejected DTO.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func publish(bus eventbus.EventBus, event any) {
	if bus != nil {
		bus.Publish(event)
	}
}

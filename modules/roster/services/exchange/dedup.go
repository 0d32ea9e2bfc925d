package exchange

import "github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"

// Decision is the verdict of the Filter for one record.
type Decision struct {
	Keep   bool
	Key    staff.IdentityKey
	Reason string
}

// Filter drops records whose identity key was already seen in the batch.
// Earlier records always win.
type Filter struct {
	seen map[staff.IdentityKey]struct{}
}

func NewFilter(seed ...staff.IdentityKey) *Filter {
	f := &Filter{seen: make(map[staff.IdentityKey]struct{}, len(seed))}
	for _, k := range seed {
		f.seen[k] = struct{}{}
	}
	return f
}

func (f *Filter) Check(s staff.Staff) Decision {
	key := staff.KeyOf(s)
	if _, dup := f.seen[key]; dup {
		return Decision{Keep: false, Key: key, Reason: ReasonDuplicate}
	}
	f.seen[key] = struct{}{}
	return Decision{Keep: true, Key: key}
}

func (f *Filter) Seen(key staff.IdentityKey) bool {
	_, ok := f.seen[key]
	return ok
}

func (f *Filter) Len() int {
	return len(f.seen)
}

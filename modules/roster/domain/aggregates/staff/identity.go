package staff

import "strings"

// IdentityKey is the name+batch composite used for duplicate detection.
// It is comparable and used directly as a map key. Records sharing a name and
// carrying no batch collapse onto one key; HasBatch keeps them apart from any
// literal batch value.
type IdentityKey struct {
	Name     string
	Batch    string
	HasBatch bool
}

func NewIdentityKey(name, batch string) IdentityKey {
	batch = strings.TrimSpace(batch)
	return IdentityKey{
		Name:     strings.TrimSpace(name),
		Batch:    batch,
		HasBatch: batch != "",
	}
}

func KeyOf(s Staff) IdentityKey {
	return NewIdentityKey(s.Name, s.BatchNo)
}

// String renders the key for diagnostics only.
func (k IdentityKey) String() string {
	return k.Name + "|" + k.Batch
}

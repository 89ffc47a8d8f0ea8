package data

// FieldStorage is either an Owned DataField or a Shared, reference-counted
// DataField with an optional display-name overlay (cur_name). The
// overlay lets a shared underlying field appear under a different name
// without cloning its value — the zero-copy path used by OML static
// symbols and the Read evaluator.
//
// Invariant: the underlying field of a Shared storage is never mutated;
// only the overlay name changes between references.
type FieldStorage struct {
	shared *sharedField // nil => Owned
	owned  DataField
	curName string // overlay name, only meaningful when shared != nil
}

type sharedField struct {
	field DataField
}

// Owned wraps a plain DataField.
func Owned(f DataField) FieldStorage {
	return FieldStorage{owned: f}
}

// NewShared promotes a DataField to a shared, reference-counted storage.
// Go's garbage collector plays the role of the reference count; no
// explicit refcount field is needed since records never outlive their
// evaluators (per the design notes).
func NewShared(f DataField) FieldStorage {
	return FieldStorage{shared: &sharedField{field: f}, curName: f.Name}
}

// IsShared reports whether this storage is a Shared variant.
func (fs FieldStorage) IsShared() bool { return fs.shared != nil }

// Name returns the display name: the overlay name for Shared storage,
// or the owned field's own name otherwise.
func (fs FieldStorage) Name() string {
	if fs.shared != nil {
		return fs.curName
	}
	return fs.owned.Name
}

// WithName returns a copy of fs with its display name overridden. For a
// Shared storage this only changes the overlay (zero-copy); for Owned it
// clones the field with the new name.
func (fs FieldStorage) WithName(name string) FieldStorage {
	if fs.shared != nil {
		fs.curName = name
		return fs
	}
	f := fs.owned
	f.Name = name
	return Owned(f)
}

// AsField materializes an owned DataField view of this storage (cloning
// the value out of a Shared storage if needed).
func (fs FieldStorage) AsField() DataField {
	if fs.shared != nil {
		f := fs.shared.field
		f.Name = fs.curName
		return f
	}
	return fs.owned
}

// Underlying returns the field exactly as stored, without applying the
// name overlay — used by tests asserting P4 (shared value identity).
func (fs FieldStorage) Underlying() DataField {
	if fs.shared != nil {
		return fs.shared.field
	}
	return fs.owned
}

// SamePointer reports whether two Shared storages reference the same
// underlying field allocation (used to assert zero-copy sharing, S5).
func SamePointer(a, b FieldStorage) bool {
	return a.shared != nil && a.shared == b.shared
}

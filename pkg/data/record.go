package data

// DataRecord is an ordered sequence of fields plus an engine-assigned id.
// Insertion order is significant; lookup by name is linear, matching the
// spec's note that callers may build their own index when many lookups
// are expected.
type DataRecord struct {
	ID    uint64
	Items []FieldStorage
}

// NewRecord allocates a record with a fresh engine id.
func NewRecord() *DataRecord {
	return &DataRecord{ID: NextID()}
}

// Push appends a field storage to the record.
func (r *DataRecord) Push(fs FieldStorage) {
	r.Items = append(r.Items, fs)
}

// Field returns the first field storage whose display name matches key.
func (r *DataRecord) Field(key string) (FieldStorage, bool) {
	for _, it := range r.Items {
		if it.Name() == key {
			return it, true
		}
	}
	return FieldStorage{}, false
}

// Set installs or replaces a field by name.
func (r *DataRecord) Set(key string, fs FieldStorage) {
	for i, it := range r.Items {
		if it.Name() == key {
			r.Items[i] = fs.WithName(key)
			return
		}
	}
	r.Push(fs.WithName(key))
}

// DataRecordRef is a borrowed, mutable view over a record used during
// evaluation: it supports positional lookup and in-place mutation of the
// source record while a destination record is being built alongside it.
type DataRecordRef struct {
	rec *DataRecord
}

// RefOf builds a DataRecordRef borrowing rec.
func RefOf(rec *DataRecord) DataRecordRef { return DataRecordRef{rec: rec} }

// GetPos returns the position and storage of the first field named key.
func (r DataRecordRef) GetPos(key string) (int, FieldStorage, bool) {
	for i, it := range r.rec.Items {
		if it.Name() == key {
			return i, it, true
		}
	}
	return -1, FieldStorage{}, false
}

// Iter returns the underlying items in order (read-only range helper).
func (r DataRecordRef) Iter() []FieldStorage { return r.rec.Items }

// MutateAt replaces the field storage at position i.
func (r DataRecordRef) MutateAt(i int, fs FieldStorage) {
	r.rec.Items[i] = fs
}

// Len reports the number of fields currently in the referenced record.
func (r DataRecordRef) Len() int { return len(r.rec.Items) }

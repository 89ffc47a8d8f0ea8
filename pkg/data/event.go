package data

// Tags is an insertion-ordered string-to-string mapping built from
// "k:v" / "k=v" / bare-flag items (e.g. topology file tag lists).
type Tags struct {
	keys   []string
	values map[string]string
}

// NewTags builds a Tags value from a list of raw items.
func NewTags(items ...string) *Tags {
	t := &Tags{values: make(map[string]string, len(items))}
	for _, it := range items {
		t.parseAdd(it)
	}
	return t
}

func (t *Tags) parseAdd(item string) {
	sep := -1
	for i, r := range item {
		if r == ':' || r == '=' {
			sep = i
			break
		}
	}
	if sep < 0 {
		t.Set(item, "true")
		return
	}
	t.Set(item[:sep], item[sep+1:])
}

// Set installs or overwrites a tag, preserving first-insertion order.
func (t *Tags) Set(k, v string) {
	if _, ok := t.values[k]; !ok {
		t.keys = append(t.keys, k)
	}
	t.values[k] = v
}

// Get returns a tag's value.
func (t *Tags) Get(k string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.values[k]
	return v, ok
}

// Keys returns tag keys in insertion order.
func (t *Tags) Keys() []string { return t.keys }

// RawDataKind selects the variant held by RawData.
type RawDataKind int

const (
	RawString RawDataKind = iota
	RawBytes
	RawSharedBytes
)

// RawData is the payload carried by a SourceEvent before WPL parsing.
// SharedBytes lets many events reference one underlying buffer (e.g. a
// length-prefixed TCP frame read into a shared slice) without copying.
type RawData struct {
	Kind   RawDataKind
	Str    string
	Bytes  []byte
	Shared *[]byte
}

func RawDataString(s string) RawData { return RawData{Kind: RawString, Str: s} }
func RawDataBytes(b []byte) RawData  { return RawData{Kind: RawBytes, Bytes: b} }
func RawDataShared(b *[]byte) RawData { return RawData{Kind: RawSharedBytes, Shared: b} }

// AsString renders the payload as a string regardless of variant.
func (r RawData) AsString() string {
	switch r.Kind {
	case RawString:
		return r.Str
	case RawBytes:
		return string(r.Bytes)
	case RawSharedBytes:
		if r.Shared == nil {
			return ""
		}
		return string(*r.Shared)
	default:
		return ""
	}
}

// AsBytes renders the payload as bytes regardless of variant.
func (r RawData) AsBytes() []byte {
	switch r.Kind {
	case RawString:
		return []byte(r.Str)
	case RawBytes:
		return r.Bytes
	case RawSharedBytes:
		if r.Shared == nil {
			return nil
		}
		return *r.Shared
	default:
		return nil
	}
}

// SourceEvent is one unit of raw input captured by a source, before WPL
// parsing assigns it structured fields.
type SourceEvent struct {
	EventID    uint64
	SourceKey  string
	Raw        RawData
	SourceTags *Tags
}

// SourceBatch is the unit of work handed from a source to the pick
// stage: a bounded slice of events plus the producing source's key.
type SourceBatch struct {
	SourceKey string
	Events    []SourceEvent
}

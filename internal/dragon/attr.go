package dragon

import (
	"encoding/json"
	"fmt"
)

// AttrState says whether an attribute was extracted.
type AttrState string

const (
	// AttrUnsupported means extraction of the attribute is not implemented.
	AttrUnsupported AttrState = "unsupported"
	// AttrAbsent means the page was read and did not carry the attribute.
	AttrAbsent AttrState = "absent"
	// AttrPresent means the attribute was read from the page.
	AttrPresent AttrState = "present"
)

// Attr is an optional dragon attribute that records why it may be missing.
// The zero value is unsupported.
type Attr[T any] struct {
	state AttrState
	value T
}

// Unsupported returns an attribute whose extraction is not implemented.
func Unsupported[T any]() Attr[T] {
	return Attr[T]{state: AttrUnsupported}
}

// Absent returns an attribute that the page did not carry.
func Absent[T any]() Attr[T] {
	return Attr[T]{state: AttrAbsent}
}

// Present returns an attribute holding v.
func Present[T any](v T) Attr[T] {
	return Attr[T]{state: AttrPresent, value: v}
}

// State reports the attribute state.
func (a Attr[T]) State() AttrState {
	if a.state == "" {
		return AttrUnsupported
	}
	return a.state
}

// Get returns the value and whether it is present.
func (a Attr[T]) Get() (T, bool) {
	return a.value, a.State() == AttrPresent
}

type attrJSON[T any] struct {
	Status AttrState `json:"status"`
	Value  *T        `json:"value,omitempty"`
}

func (a Attr[T]) MarshalJSON() ([]byte, error) {
	out := attrJSON[T]{Status: a.State()}
	if v, ok := a.Get(); ok {
		out.Value = &v
	}
	return json.Marshal(out)
}

func (a *Attr[T]) UnmarshalJSON(data []byte) error {
	var in attrJSON[T]
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Status {
	case AttrPresent:
		if in.Value == nil {
			return fmt.Errorf("attribute marked present without a value")
		}
		*a = Present(*in.Value)
	case AttrAbsent:
		*a = Absent[T]()
	case AttrUnsupported, "":
		*a = Unsupported[T]()
	default:
		return fmt.Errorf("unknown attribute status %q", in.Status)
	}
	return nil
}

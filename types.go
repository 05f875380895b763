package propschema

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Tag is a primitive schema type name.
type Tag string

const (
	TagString  Tag = "string"
	TagNumber  Tag = "number"
	TagInteger Tag = "integer"
	TagBoolean Tag = "boolean"
	TagObject  Tag = "object"
	TagArray   Tag = "array"
	TagNull    Tag = "null"
)

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool {
	switch t {
	case TagString, TagNumber, TagInteger, TagBoolean, TagObject, TagArray, TagNull:
		return true
	}
	return false
}

// Type is either a single tag or a union of tags.
// The zero value is an empty single type and matches nothing.
type Type struct {
	tags  []Tag
	union bool
}

// Single returns a non-union type.
func Single(t Tag) Type { return Type{tags: []Tag{t}} }

// Union returns a union type. Duplicate tags are dropped.
func Union(tags ...Tag) Type {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if !containsTag(out, t) {
			out = append(out, t)
		}
	}
	return Type{tags: out, union: true}
}

// IsUnion reports whether the type was declared as a union list.
func (t Type) IsUnion() bool { return t.union }

// Tags returns a copy of the member tags.
func (t Type) Tags() []Tag { return append([]Tag(nil), t.tags...) }

// Contains reports whether tag is a member.
func (t Type) Contains(tag Tag) bool { return containsTag(t.tags, tag) }

// Primary returns the first non-null member, or null when there is none.
func (t Type) Primary() Tag {
	for _, tag := range t.tags {
		if tag != TagNull {
			return tag
		}
	}
	return TagNull
}

// withNull returns the type widened to a union that includes null.
func (t Type) withNull() Type {
	if t.union && t.Contains(TagNull) {
		return t
	}
	return Union(append(t.Tags(), TagNull)...)
}

func (t Type) String() string {
	if !t.union && len(t.tags) == 1 {
		return string(t.tags[0])
	}
	return fmt.Sprint(t.tags)
}

// Value returns the document form: a string for a single type, a string
// slice for a union.
func (t Type) Value() any {
	if !t.union {
		if len(t.tags) == 0 {
			return ""
		}
		return string(t.tags[0])
	}
	out := make([]any, len(t.tags))
	for i, tag := range t.tags {
		out[i] = string(tag)
	}
	return out
}

func (t Type) MarshalJSON() ([]byte, error) { return json.Marshal(t.Value()) }

func (t *Type) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, err := ParseType(v)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseType reads a document type value (string or list of strings).
func ParseType(v any) (Type, error) {
	switch tv := v.(type) {
	case string:
		if !Tag(tv).Valid() {
			return Type{}, fmt.Errorf("%w: unknown type %q", ErrInvalidArgument, tv)
		}
		return Single(Tag(tv)), nil
	case []string:
		items := make([]any, len(tv))
		for i, s := range tv {
			items[i] = s
		}
		return ParseType(items)
	case []any:
		tags := make([]Tag, 0, len(tv))
		for _, it := range tv {
			s, ok := it.(string)
			if !ok || !Tag(s).Valid() {
				return Type{}, fmt.Errorf("%w: unknown union member %v", ErrInvalidArgument, it)
			}
			tags = append(tags, Tag(s))
		}
		return Union(tags...), nil
	default:
		return Type{}, fmt.Errorf("%w: type must be a string or a list, got %T", ErrInvalidArgument, v)
	}
}

func containsTag(tags []Tag, t Tag) bool {
	for _, x := range tags {
		if x == t {
			return true
		}
	}
	return false
}

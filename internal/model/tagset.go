package model

// TagSet is a deduplicated collection of tag names that remembers first-seen
// order. The zero value is an empty set. TagSet has value semantics: With
// never modifies the receiver.
type TagSet struct {
	names []string
	index map[string]struct{}
}

// NewTagSet returns a set holding the given tags.
func NewTagSet(tags ...string) TagSet {
	return TagSet{}.With(tags...)
}

// With returns a new set holding the receiver's tags plus the given ones.
func (s TagSet) With(tags ...string) TagSet {
	out := TagSet{
		names: make([]string, len(s.names), len(s.names)+len(tags)),
		index: make(map[string]struct{}, len(s.names)+len(tags)),
	}
	copy(out.names, s.names)
	for _, n := range s.names {
		out.index[n] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := out.index[t]; ok {
			continue
		}
		out.index[t] = struct{}{}
		out.names = append(out.names, t)
	}
	return out
}

// Contains reports whether tag is in the set.
func (s TagSet) Contains(tag string) bool {
	_, ok := s.index[tag]
	return ok
}

// Len returns the number of distinct tags.
func (s TagSet) Len() int {
	return len(s.names)
}

// Names returns the tags in first-seen order.
func (s TagSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

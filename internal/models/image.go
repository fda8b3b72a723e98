// Package models defines the domain types for Mosaic.
package models

// Image is one synthetic gallery record. It is created by a batch factory,
// gains tags through user edits and is never removed.
type Image struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Tags TagSet `json:"tags"`
}

// Clone returns a copy whose tag set does not alias the receiver's.
func (img Image) Clone() Image {
	img.Tags = img.Tags.Clone()
	return img
}

// TagSet is an insertion-ordered set of tag strings.
type TagSet []string

// NewTagSet builds a set from tags, dropping empty strings and duplicates.
func NewTagSet(tags ...string) TagSet {
	var s TagSet
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Has reports whether tag is in the set.
func (s TagSet) Has(tag string) bool {
	for _, t := range s {
		if t == tag {
			return true
		}
	}
	return false
}

// Add appends tag unless it is empty or already present.
// It returns true when the set changed.
func (s *TagSet) Add(tag string) bool {
	if tag == "" || s.Has(tag) {
		return false
	}
	*s = append(*s, tag)
	return true
}

// Clone returns an independent copy of the set.
func (s TagSet) Clone() TagSet {
	if s == nil {
		return nil
	}
	out := make(TagSet, len(s))
	copy(out, s)
	return out
}

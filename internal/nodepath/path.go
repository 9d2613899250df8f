package nodepath

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// segmentRegex parses a single segment of a path, e.g. `name` or `name[1]`.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[(\d+)\])?$`)

// Segment is one element of a Path: an identifier plus an optional
// non-negative instance index. Index is -1 when the segment is unindexed.
type Segment struct {
	Name  string
	Index int
}

// NewSegment returns an unindexed segment.
func NewSegment(name string) Segment {
	return Segment{Name: name, Index: -1}
}

// NewIndexedSegment returns a segment carrying an instance index.
func NewIndexedSegment(name string, index int) Segment {
	return Segment{Name: name, Index: index}
}

// String serializes the segment into its canonical form.
func (s Segment) String() string {
	if s.Index < 0 {
		return s.Name
	}
	return fmt.Sprintf("%s[%d]", s.Name, s.Index)
}

// Path is a structured node identifier.
type Path struct {
	Segments []Segment
}

// Parse converts a canonical path string into a Path. An empty string
// parses to the empty (root) path.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return Path{}, nil
	}
	parts := strings.Split(raw, ".")
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		m := segmentRegex.FindStringSubmatch(part)
		if m == nil {
			return Path{}, fmt.Errorf("invalid path segment %q in %q", part, raw)
		}
		seg := NewSegment(m[1])
		if m[2] != "" {
			idx, err := strconv.Atoi(m[2])
			if err != nil {
				return Path{}, fmt.Errorf("invalid index in path segment %q: %w", part, err)
			}
			seg.Index = idx
		}
		segments = append(segments, seg)
	}
	return Path{Segments: segments}, nil
}

// String serializes the Path into its canonical dot-joined representation.
func (p Path) String() string {
	var sb strings.Builder
	for i, seg := range p.Segments {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(seg.String())
	}
	return sb.String()
}

// IsRoot reports whether the path has no segments.
func (p Path) IsRoot() bool {
	return len(p.Segments) == 0
}

// Depth returns the number of segments.
func (p Path) Depth() int {
	return len(p.Segments)
}

// Child returns a new Path with an unindexed segment appended.
func (p Path) Child(name string) Path {
	return p.append(NewSegment(name))
}

// Indexed returns a new Path with an indexed segment appended.
func (p Path) Indexed(name string, index int) Path {
	return p.append(NewIndexedSegment(name, index))
}

func (p Path) append(seg Segment) Path {
	segments := make([]Segment, len(p.Segments), len(p.Segments)+1)
	copy(segments, p.Segments)
	return Path{Segments: append(segments, seg)}
}

// Equal reports deep equality of two paths.
func (p Path) Equal(other Path) bool {
	if len(p.Segments) != len(other.Segments) {
		return false
	}
	for i, seg := range p.Segments {
		if seg != other.Segments[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether p starts with the given prefix path.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.Segments) > len(p.Segments) {
		return false
	}
	for i, seg := range prefix.Segments {
		if seg != p.Segments[i] {
			return false
		}
	}
	return true
}

// Join appends a relative path string (which may itself contain dots) to p.
// It fails if the suffix does not parse.
func (p Path) Join(relative string) (Path, error) {
	rel, err := Parse(relative)
	if err != nil {
		return Path{}, err
	}
	segments := make([]Segment, 0, len(p.Segments)+len(rel.Segments))
	segments = append(segments, p.Segments...)
	segments = append(segments, rel.Segments...)
	return Path{Segments: segments}, nil
}

// HasSuffixString reports whether the canonical string form of p ends with
// the given raw suffix on a segment boundary.
func (p Path) HasSuffixString(suffix string) bool {
	s := p.String()
	if s == suffix {
		return true
	}
	return strings.HasSuffix(s, "."+suffix)
}

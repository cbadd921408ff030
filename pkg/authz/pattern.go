package authz

import (
	"fmt"
	"path"
	"strings"
)

type segmentKind uint8

const (
	segLiteral segmentKind = iota
	segOne                 // * or {name}
	segGlob                // segment containing * among other characters, e.g. *.css
	segRest                // **
)

type segment struct {
	kind  segmentKind
	value string
}

// pattern is a compiled Ant-style route pattern.
type pattern struct {
	raw      string
	segments []segment
}

func compilePattern(raw string) (pattern, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return pattern{}, ErrEmptyPattern
	}
	if !strings.HasPrefix(raw, "/") {
		return pattern{}, fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, raw)
	}

	parts := splitPath(raw)
	segs := make([]segment, 0, len(parts))
	for i, p := range parts {
		switch {
		case p == "**":
			if i != len(parts)-1 {
				return pattern{}, fmt.Errorf("%w: %q: ** must be the last segment", ErrInvalidPattern, raw)
			}
			segs = append(segs, segment{kind: segRest})
		case p == "*":
			segs = append(segs, segment{kind: segOne})
		case strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}"):
			if len(p) == 2 {
				return pattern{}, fmt.Errorf("%w: %q: empty parameter name", ErrInvalidPattern, raw)
			}
			segs = append(segs, segment{kind: segOne, value: p[1 : len(p)-1]})
		case strings.Contains(p, "*"):
			if _, err := path.Match(p, ""); err != nil {
				return pattern{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, raw, err)
			}
			segs = append(segs, segment{kind: segGlob, value: p})
		default:
			segs = append(segs, segment{kind: segLiteral, value: p})
		}
	}
	return pattern{raw: raw, segments: segs}, nil
}

func (p pattern) match(urlPath string) bool {
	parts := splitPath(cleanPath(urlPath))
	for i, seg := range p.segments {
		if seg.kind == segRest {
			return true
		}
		if i >= len(parts) {
			return false
		}
		switch seg.kind {
		case segLiteral:
			if parts[i] != seg.value {
				return false
			}
		case segGlob:
			if ok, _ := path.Match(seg.value, parts[i]); !ok {
				return false
			}
		}
	}
	return len(parts) == len(p.segments)
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

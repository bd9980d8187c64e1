package routepath

import "strings"

// Params holds the name→value bindings extracted from a request path.
// The wildcard capture, when present, is stored under the reserved key "*".
type Params map[string]string

// Pattern is a parsed route declaration: an ordered sequence of segments.
// The zero value is not useful; use Parse or Root.
type Pattern struct {
	segs []Segment
}

// Root returns the pattern for the root path "/".
func Root() Pattern {
	return Pattern{segs: []Segment{Leader{}}}
}

// Parse turns a route declaration into a Pattern.
//
// The declaration is split on "/"; empty tokens from repeated or trailing
// slashes are dropped. Tokens starting with ":" become parameters, the
// token "*" becomes the wildcard, and anything else is a literal. A
// declaration with no segments (including one without any slash) parses to
// the root pattern.
func Parse(declaration string) (Pattern, error) {
	decl := strings.TrimRight(declaration, "/")

	if !strings.Contains(decl, "/") {
		return Root(), nil
	}

	p := Root()

	// sawWildcard enforces one wildcard per pattern; justWildcard tracks
	// whether the previous token was the wildcard, which a parameter may
	// not follow.
	var sawWildcard, justWildcard bool

	for _, tok := range strings.Split(decl, "/") {
		switch {
		case tok == "":
			// Separator noise, not a path component.
		case strings.HasPrefix(tok, ParamSigil):
			if justWildcard {
				return Pattern{}, &ParseError{Declaration: declaration, Err: ErrParamAfterWildcard}
			}
			p.segs = append(p.segs, Param{Name: strings.TrimPrefix(tok, ParamSigil)})
		case tok == WildcardToken:
			if sawWildcard {
				return Pattern{}, &ParseError{Declaration: declaration, Err: ErrAmbiguousWildcard}
			}
			p.segs = append(p.segs, Wildcard{})
			sawWildcard, justWildcard = true, true
		default:
			p.segs = append(p.segs, Literal{Text: tok})
			justWildcard = false
		}
	}

	return p, nil
}

// MustParse is like Parse but panics on error. Intended for patterns known
// valid at compile time.
func MustParse(declaration string) Pattern {
	p, err := Parse(declaration)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the canonical rendering of the pattern: "/"-joined
// segments with parameters rendered as ":name" and the wildcard as "*".
// The root pattern renders as "/".
func (p Pattern) String() string {
	if len(p.segs) < 2 {
		return "/"
	}

	rendered := make([]string, 0, len(p.segs))
	for _, seg := range p.segs {
		rendered = append(rendered, seg.render())
	}
	return strings.Join(rendered, "/")
}

// Compare orders two patterns by their canonical renderings. The ordering
// is used for deterministic storage only; it carries no matching priority.
func (p Pattern) Compare(other Pattern) int {
	return strings.Compare(p.String(), other.String())
}

// Equal reports whether two patterns have the same canonical rendering.
func (p Pattern) Equal(other Pattern) bool {
	return p.Compare(other) == 0
}

// IsRoot reports whether the pattern is the root pattern.
func (p Pattern) IsRoot() bool {
	return len(p.segs) == 1
}

// ParamNames lists the named parameters of the pattern in declaration
// order, excluding the wildcard. Useful for debugging and documentation.
func (p Pattern) ParamNames() []string {
	var names []string
	for _, seg := range p.segs {
		if param, ok := seg.(Param); ok {
			names = append(names, param.Name)
		}
	}
	return names
}

// splitPath splits a request path into its non-empty segments. Repeated
// slashes collapse; a trailing slash is insignificant.
func splitPath(path string) []string {
	path = strings.TrimRight(path, "/")

	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

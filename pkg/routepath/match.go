package routepath

import "strings"

// Matches reports whether the request path matches the pattern. Literal
// segments compare by value, parameters match any single segment, and the
// wildcard greedily consumes segments until the next literal of the pattern
// appears in the path (or to the end of the path when it is the final
// segment). The root pattern matches only the root path.
func (p Pattern) Matches(path string) bool {
	_, ok := p.capture(splitPath(path))
	return ok
}

// Extract walks the request path against the pattern and returns the bound
// parameters. The wildcard capture is joined with "/" under the reserved
// key "*". Returns ErrNoMatch when the path does not match.
func (p Pattern) Extract(path string) (Params, error) {
	parts := splitPath(path)

	// The root path against the root pattern binds nothing.
	if len(parts) == 0 && p.IsRoot() {
		return Params{}, nil
	}

	params, ok := p.capture(parts)
	if !ok {
		return nil, ErrNoMatch
	}
	return params, nil
}

// capture aligns path segments against the pattern, binding parameters as
// it goes. It implements the greedy-until-next-literal wildcard rule used
// by both Matches and Extract, so the two can never disagree.
func (p Pattern) capture(parts []string) (Params, bool) {
	// segs[0] is always the Leader; it consumes no path segment.
	segs := p.segs[1:]

	params := make(Params, len(segs))
	i := 0
	var wild []string
	inWild := false

	for _, part := range parts {
		if inWild {
			// The wildcard ends at the first path segment equal to
			// the literal that follows it in the pattern.
			if i < len(segs) {
				if lit, ok := segs[i].(Literal); ok && lit.Text == part {
					params[WildcardToken] = strings.Join(wild, "/")
					inWild, wild = false, nil
					i++
					continue
				}
			}
			wild = append(wild, part)
			continue
		}

		if i >= len(segs) {
			return nil, false
		}

		switch seg := segs[i].(type) {
		case Literal:
			if seg.Text != part {
				return nil, false
			}
			i++
		case Param:
			params[seg.Name] = part
			i++
		case Wildcard:
			// Enter wildcard mode; i now points at the boundary
			// literal, if any.
			wild = append(wild, part)
			inWild = true
			i++
		case Leader:
			return nil, false
		}
	}

	if inWild {
		// A trailing wildcard consumes the remainder, but anything
		// after it in the pattern must have been satisfied.
		if i < len(segs) {
			return nil, false
		}
		params[WildcardToken] = strings.Join(wild, "/")
		return params, true
	}

	// Unconsumed pattern segments mean the path was too short.
	if i < len(segs) {
		return nil, false
	}
	return params, true
}

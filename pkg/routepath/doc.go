// Package routepath implements the route pattern language used by the
// trellis router.
//
// A pattern is a URI path with the capability to superimpose variables.
// Static patterns match exactly one path, while dynamic segments capture
// parts of the request path:
//
//	/a/b/c       matches only /a/b/c
//	/a/:b/c      matches /a/<any single segment>/c, binding it to "b"
//	/files/*     matches /files/<one or more segments>, binding the
//	             joined remainder to the reserved name "*"
//
// A single wildcard may appear in a pattern. It greedily consumes request
// segments until the next literal segment of the pattern is seen, or to the
// end of the path when it is the final segment. Two rules keep captures
// unambiguous and are enforced at parse time:
//
//   - at most one wildcard per pattern
//   - a named parameter may not immediately follow a wildcard
//
// Trailing slashes are insignificant: "/account/" and "/account" parse to
// the same pattern. Repeated slashes in a request path are treated as
// separator noise and collapsed. The root pattern "/" matches only the root
// path.
package routepath

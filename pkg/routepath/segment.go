package routepath

// Segment is one slash-delimited unit of a pattern. The set of
// implementations is closed: Leader, Literal, Param, and Wildcard.
type Segment interface {
	// render returns the segment as it appears in a canonical pattern
	// string.
	render() string

	segment()
}

// Leader marks the conceptual root of a pattern. It appears at most once,
// always first; the root path "/" parses to a pattern holding only a Leader.
type Leader struct{}

func (Leader) render() string { return "" }
func (Leader) segment()       {}

// Literal matches exactly its own text.
type Literal struct {
	Text string
}

func (l Literal) render() string { return l.Text }
func (Literal) segment()         {}

// Param matches any single path segment and binds it to Name.
type Param struct {
	Name string
}

func (p Param) render() string { return ":" + p.Name }
func (Param) segment()         {}

// Wildcard matches one or more path segments. The capture is bound to the
// reserved parameter name "*".
type Wildcard struct{}

func (Wildcard) render() string { return "*" }
func (Wildcard) segment()       {}

const (
	// ParamSigil prefixes a named parameter in a pattern declaration.
	ParamSigil = ":"

	// WildcardToken is the wildcard segment in a pattern declaration and
	// the reserved Params key holding the wildcard capture.
	WildcardToken = "*"
)

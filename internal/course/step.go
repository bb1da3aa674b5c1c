package course

// MediaRef points at one video slot declared inside a step body.
// Ordinal is the number captured from the inline marker and doubles as the
// lookup key for transport-side cached references.
type MediaRef struct {
	Ordinal string
	Path    string
}

// Step is one unit of the course. Steps are built once at load time and the
// shared list is never mutated afterwards, so it is safe to read from any
// goroutine without locking.
//
// A step with a non-empty Button is "gated": the sequence halts on it until
// the user either taps the inline button or sends the exact label as text.
// A step may have neither text nor videos; it still renders, as an explicit
// empty-step notice.
type Step struct {
	Text   string
	Button string
	Videos []MediaRef
}

// Gated reports whether the step requires confirmation before advancing.
func (s Step) Gated() bool { return s.Button != "" }

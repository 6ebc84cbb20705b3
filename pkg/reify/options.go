package reify

// Options is a bit set controlling field validation and key matching.
// Flags combine with bitwise OR. Resolution precedence, strongest first:
// per-member tag flag, per-type marker, call-site options, process default.
type Options uint8

const (
	// AllowExtraFields accepts input map keys that match no target member.
	// When cleared, unmatched keys fail the decode with ExtraFieldsError.
	AllowExtraFields Options = 1 << iota
	// AllowMissingFields accepts target members with no corresponding input
	// key. When cleared, unset members fail with MissingFieldsError.
	AllowMissingFields
	// CaseSensitive requires input keys to match member names exactly.
	// When cleared, matching is case-insensitive and a key set containing
	// two case-folded matches for one member is an error.
	CaseSensitive
)

// Defaults is the process-wide option set applied when a call site passes
// none. Change it during program setup, before concurrent decoding starts.
var Defaults = AllowExtraFields | AllowMissingFields | CaseSensitive

// Has reports whether all bits of flag are set.
func (o Options) Has(flag Options) bool { return o&flag == flag }

// effective resolves a call site's variadic options against Defaults.
func effective(opts []Options) Options {
	if len(opts) == 0 {
		return Defaults
	}
	var o Options
	for _, opt := range opts {
		o |= opt
	}
	return o
}

// Strict is an embeddable marker that turns missing-field checking on for
// the struct embedding it, overriding the call-site option.
type Strict struct{}

// Lenient is an embeddable marker that turns missing-field checking off for
// the struct embedding it, overriding the call-site option.
type Lenient struct{}

package dialect

import "fmt"

// CommitPolicy says when an instantiation location becomes a tree node.
type CommitPolicy uint8

const (
	// CommitDeferred: the enter warning comes first and its location is held
	// until the next backtrace frame, enter or end of input.
	CommitDeferred CommitPolicy = iota + 1
	// CommitImmediate: the backtrace precedes the warning, so the node is
	// created as soon as enter is seen.
	CommitImmediate
)

func (p CommitPolicy) String() string {
	switch p {
	case CommitDeferred:
		return "deferred"
	case CommitImmediate:
		return "immediate"
	default:
		return "invalid"
	}
}

// DepthPolicy says how an exit event changes the backtrace depth counter.
type DepthPolicy uint8

const (
	DepthDecrement DepthPolicy = iota + 1 // depth-1, saturating at zero
	DepthReset                            // depth = 0
)

func (p DepthPolicy) String() string {
	switch p {
	case DepthDecrement:
		return "decrement"
	case DepthReset:
		return "reset"
	default:
		return "invalid"
	}
}

// Profile bundles everything the tree builder needs to know about a dialect.
type Profile struct {
	Kind      Kind
	Matcher   *Matcher
	Commit    CommitPolicy
	ExitDepth DepthPolicy
}

var profiles [kindCount]*Profile

func init() {
	profiles[MSVC] = &Profile{
		Kind:      MSVC,
		Matcher:   compileMatcher(patternSets[MSVC]),
		Commit:    CommitDeferred,
		ExitDepth: DepthDecrement,
	}
	profiles[GCC] = &Profile{
		Kind:      GCC,
		Matcher:   compileMatcher(patternSets[GCC]),
		Commit:    CommitImmediate,
		ExitDepth: DepthReset,
	}
	profiles[GCCLegacy] = &Profile{
		Kind:      GCCLegacy,
		Matcher:   compileMatcher(patternSets[GCCLegacy]),
		Commit:    CommitImmediate,
		ExitDepth: DepthReset,
	}
}

// ProfileFor returns the shared, immutable profile of k.
func ProfileFor(k Kind) (*Profile, error) {
	if k <= Unknown || k >= kindCount {
		return nil, fmt.Errorf("no profile for compiler %s", k)
	}
	return profiles[k], nil
}

// MustProfile is ProfileFor for statically known kinds.
func MustProfile(k Kind) *Profile {
	p, err := ProfileFor(k)
	if err != nil {
		panic(err)
	}
	return p
}

package importer

import (
	"github.com/yahsan2/backlog-import/pkg/backlog"
	"github.com/yahsan2/backlog-import/pkg/template"
)

// ParentMode describes how a row's parent was resolved
type ParentMode int

const (
	// ParentNone creates the issue top-level
	ParentNone ParentMode = iota
	// ParentAnchor attaches the issue to the current anchor
	ParentAnchor
	// ParentExplicit attaches the issue to a literal issue key
	ParentExplicit
)

// ParentResolution is the outcome of resolving one row's parent reference
type ParentResolution struct {
	Mode ParentMode
	// Parent is set for ParentAnchor
	Parent *backlog.Issue
	// Key is the parent key for ParentAnchor and ParentExplicit
	Key string
	// Warning is a user-facing notice when the shorthand could not be honoured
	Warning string
	// KeepAnchor leaves the anchor unchanged after creation
	KeepAnchor bool
}

// TookOverParent reports whether the row became a child of the anchor
func (r ParentResolution) TookOverParent() bool {
	return r.Mode == ParentAnchor
}

// ChainState tracks the anchor that shorthand rows attach to
type ChainState struct {
	// Token is the shorthand parent reference
	Token string
	// Anchor is the last created issue that did not take over a parent
	Anchor *backlog.Issue
	// AnchorIsChild is set when the anchor itself has a parent
	AnchorIsChild bool
}

// NewChainState returns an empty chain for the token
func NewChainState(token string) ChainState {
	if token == "" {
		token = template.ParentShorthand
	}
	return ChainState{Token: token}
}

// Resolve decides the parent of the next row from its declared reference
func (s ChainState) Resolve(ref string) ParentResolution {
	switch {
	case ref == "":
		return ParentResolution{Mode: ParentNone}
	case ref != s.Token:
		return ParentResolution{Mode: ParentExplicit, Key: ref}
	case s.Anchor == nil:
		return ParentResolution{
			Mode:    ParentNone,
			Warning: "no previous issue to attach to, created as a top-level issue",
		}
	case s.AnchorIsChild:
		return ParentResolution{
			Mode:       ParentNone,
			Warning:    "cannot become a grandchild of " + s.Anchor.IssueKey + ", created as a top-level issue",
			KeepAnchor: true,
		}
	default:
		return ParentResolution{Mode: ParentAnchor, Parent: s.Anchor, Key: s.Anchor.IssueKey}
	}
}

// Advance returns the state after the row was created
func (s ChainState) Advance(created *backlog.Issue, res ParentResolution) ChainState {
	if res.TookOverParent() || res.KeepAnchor {
		return s
	}
	return ChainState{
		Token:         s.Token,
		Anchor:        created,
		AnchorIsChild: res.Mode == ParentExplicit || created.IsChild(),
	}
}

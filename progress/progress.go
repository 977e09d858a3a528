// Package progress describes in-progress indicators emitted by the
// execution layer while long-running work is visible to the user.
//
// A Progress is a plain value. It comes in two kinds: Global progress is
// cross-cutting (a screen-wide spinner), Local progress is scoped to one
// operation and can be promoted with ToGlobal.
//
//	p := progress.Local().WithModal(true)
//	ec.LaunchUIProgress(execution.ProgressOptions{Progress: p}, body)
package progress

import "fmt"

// Kind discriminates the two progress variants.
type Kind int

const (
	KindGlobal Kind = iota
	KindLocal
)

func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindLocal:
		return "local"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Param is an opaque value attached to a Progress by the caller and
// handed back untouched to the display hook.
type Param any

// Hooks are optional callbacks run right before the indicator is shown
// or hidden. BeforeHide only runs for an indicator that was shown.
type Hooks interface {
	BeforeShow()
	BeforeHide()
}

// Progress is an immutable progress indicator description.
type Progress struct {
	Kind  Kind
	Modal bool
	Int   int
	Float float32
	Param Param
	Hooks Hooks
}

// Global returns the default global progress.
func Global() Progress {
	return Progress{Kind: KindGlobal}
}

// Local returns the default local progress.
func Local() Progress {
	return Progress{Kind: KindLocal}
}

// IsGlobal reports whether p is a Global progress.
func (p Progress) IsGlobal() bool { return p.Kind == KindGlobal }

// IsLocal reports whether p is a Local progress.
func (p Progress) IsLocal() bool { return p.Kind == KindLocal }

// ToGlobal copies every field of p into a Global progress.
func (p Progress) ToGlobal() Progress {
	p.Kind = KindGlobal
	return p
}

// WithModal returns a copy of p with the modal flag set.
func (p Progress) WithModal(modal bool) Progress {
	p.Modal = modal
	return p
}

// WithInt returns a copy of p with an integer progress value.
func (p Progress) WithInt(v int) Progress {
	p.Int = v
	return p
}

// WithFloat returns a copy of p with a fractional progress value.
func (p Progress) WithFloat(v float32) Progress {
	p.Float = v
	return p
}

// WithParam returns a copy of p carrying param.
func (p Progress) WithParam(param Param) Progress {
	p.Param = param
	return p
}

// WithHooks returns a copy of p with show/hide hooks attached.
func (p Progress) WithHooks(h Hooks) Progress {
	p.Hooks = h
	return p
}

// BeforeShow runs the show hook if one is attached.
func (p Progress) BeforeShow() {
	if p.Hooks != nil {
		p.Hooks.BeforeShow()
	}
}

// BeforeHide runs the hide hook if one is attached.
func (p Progress) BeforeHide() {
	if p.Hooks != nil {
		p.Hooks.BeforeHide()
	}
}

func (p Progress) String() string {
	return fmt.Sprintf("%s(modal=%t, int=%d, float=%g)", p.Kind, p.Modal, p.Int, p.Float)
}

// Signal is one show or hide notification.
type Signal struct {
	Visible  bool
	Progress Progress
}

// Shown builds a visible Signal.
func Shown(p Progress) Signal { return Signal{Visible: true, Progress: p} }

// Hidden builds a hidden Signal.
func Hidden(p Progress) Signal { return Signal{Visible: false, Progress: p} }

func (s Signal) String() string {
	if s.Visible {
		return "show " + s.Progress.String()
	}
	return "hide " + s.Progress.String()
}

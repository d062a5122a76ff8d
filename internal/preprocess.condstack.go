package internal

import "fmt"

// BranchState says whether lines in the current block are written
type BranchState int

// Branch state constants
const (
	BranchEmit BranchState = iota
	BranchSkip
)

// String returns the branch state name
func (s BranchState) String() string {
	if s == BranchSkip {
		return "skip"
	}
	return "emit"
}

// Frame is one level of if/elif/else nesting
type Frame struct {
	State             BranchState
	HasEmittedInBlock bool
	HasSeenElse       bool
	Line              int // line of the opening directive, 0 for the base frame
}

// ConditionFunc lazily evaluates a branch condition
type ConditionFunc func() (bool, error)

// CondStack tracks nested conditional blocks for one file. The bottom frame
// is always Emit and is never popped.
type CondStack struct {
	frames []Frame
}

// NewCondStack creates a stack holding only the base frame
func NewCondStack() *CondStack {
	return &CondStack{frames: []Frame{{State: BranchEmit}}}
}

// Depth returns the number of frames, 1 outside any block
func (c *CondStack) Depth() int {
	return len(c.frames)
}

// Top returns a copy of the innermost frame
func (c *CondStack) Top() Frame {
	return c.frames[len(c.frames)-1]
}

// Active reports whether lines are currently emitted
func (c *CondStack) Active() bool {
	return c.Top().State == BranchEmit
}

// parentSkipping reports whether the frame below the top is inert
func (c *CondStack) parentSkipping() bool {
	return len(c.frames) > 1 && c.frames[len(c.frames)-2].State == BranchSkip
}

// PushIf opens a block. Inside an inert region eval is not called.
func (c *CondStack) PushIf(line int, eval ConditionFunc) error {
	if !c.Active() {
		c.frames = append(c.frames, Frame{State: BranchSkip, Line: line})
		return nil
	}

	ok, err := eval()
	if err != nil {
		return err
	}
	if ok {
		c.frames = append(c.frames, Frame{State: BranchEmit, HasEmittedInBlock: true, Line: line})
	} else {
		c.frames = append(c.frames, Frame{State: BranchSkip, Line: line})
	}
	return nil
}

// Elif replaces the top frame. eval runs only if no earlier branch emitted
// and the enclosing block is live.
func (c *CondStack) Elif(eval ConditionFunc) error {
	if len(c.frames) == 1 {
		return NewUnbalancedError(ReasonElifWithoutIf, ErrMsgElifWithoutIf)
	}
	top := &c.frames[len(c.frames)-1]
	if top.HasSeenElse {
		return NewUnbalancedError(ReasonElifAfterElse, ErrMsgElifAfterElse)
	}

	switch {
	case top.HasEmittedInBlock:
		top.State = BranchSkip
	case c.parentSkipping():
		top.State = BranchSkip
	default:
		ok, err := eval()
		if err != nil {
			return err
		}
		if ok {
			top.State = BranchEmit
			top.HasEmittedInBlock = true
		} else {
			top.State = BranchSkip
		}
	}
	return nil
}

// Else switches to the final branch of the block
func (c *CondStack) Else() error {
	if len(c.frames) == 1 {
		return NewUnbalancedError(ReasonElseWithoutIf, ErrMsgElseWithoutIf)
	}
	top := &c.frames[len(c.frames)-1]
	if top.HasSeenElse {
		return NewUnbalancedError(ReasonElseAfterElse, ErrMsgElseAfterElse)
	}
	top.HasSeenElse = true

	switch {
	case top.HasEmittedInBlock, c.parentSkipping():
		top.State = BranchSkip
	default:
		top.State = BranchEmit
		top.HasEmittedInBlock = true
	}
	return nil
}

// Endif closes the innermost block
func (c *CondStack) Endif() error {
	if len(c.frames) == 1 {
		return NewUnbalancedError(ReasonUnmatchedEndif, ErrMsgUnmatchedEndif)
	}
	c.frames = c.frames[:len(c.frames)-1]
	return nil
}

// Close verifies that every block opened in the file was closed. The
// returned error names the line of the innermost open block.
func (c *CondStack) Close() error {
	if len(c.frames) != 1 {
		return NewUnbalancedError(ReasonUnterminatedIfBlock, ErrMsgUnterminatedIfBlock).
			WithDetail(fmt.Sprintf(ErrFmtOpenedAtLine, c.Top().Line))
	}
	return nil
}

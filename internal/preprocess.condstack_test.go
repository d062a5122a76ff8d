package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constCond(v bool) ConditionFunc {
	return func() (bool, error) { return v, nil }
}

// countingCond records how often the condition was evaluated
func countingCond(v bool, calls *int) ConditionFunc {
	return func() (bool, error) {
		*calls++
		return v, nil
	}
}

func TestCondStack_Initial(t *testing.T) {
	stack := NewCondStack()
	assert.Equal(t, 1, stack.Depth())
	assert.True(t, stack.Active())
	assert.NoError(t, stack.Close())
}

func TestCondStack_ExactlyOneBranch(t *testing.T) {
	tests := []struct {
		name     string
		conds    []bool // if, then elifs
		hasElse  bool
		expected int // index of emitted branch, len(conds) for else, -1 for none
	}{
		{"if true", []bool{true}, false, 0},
		{"if false", []bool{false}, false, -1},
		{"if false else", []bool{false}, true, 1},
		{"if true else", []bool{true}, true, 0},
		{"first elif", []bool{false, true, true}, true, 1},
		{"second elif", []bool{false, false, true}, false, 2},
		{"all false else", []bool{false, false, false}, true, 3},
		{"all true", []bool{true, true, true}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := NewCondStack()
			emitted := -1

			require.NoError(t, stack.PushIf(1, constCond(tt.conds[0])))
			if stack.Active() {
				emitted = 0
			}
			for i, c := range tt.conds[1:] {
				require.NoError(t, stack.Elif(constCond(c)))
				if stack.Active() {
					require.Equal(t, -1, emitted, "second branch emitted")
					emitted = i + 1
				}
			}
			if tt.hasElse {
				require.NoError(t, stack.Else())
				if stack.Active() {
					require.Equal(t, -1, emitted, "else emitted after branch")
					emitted = len(tt.conds)
				}
			}
			require.NoError(t, stack.Endif())

			assert.Equal(t, tt.expected, emitted)
			assert.Equal(t, 1, stack.Depth())
		})
	}
}

func TestCondStack_LazyEvaluation(t *testing.T) {
	calls := 0
	stack := NewCondStack()

	require.NoError(t, stack.PushIf(1, constCond(false)))
	require.NoError(t, stack.PushIf(2, countingCond(true, &calls)))
	assert.False(t, stack.Active())
	require.NoError(t, stack.Elif(countingCond(true, &calls)))
	assert.False(t, stack.Active())
	require.NoError(t, stack.Else())
	assert.False(t, stack.Active())
	require.NoError(t, stack.Endif())
	require.NoError(t, stack.Endif())

	require.NoError(t, stack.PushIf(5, constCond(true)))
	require.NoError(t, stack.Elif(countingCond(true, &calls)))
	require.NoError(t, stack.Endif())

	assert.Equal(t, 0, calls)
}

func TestCondStack_EndifRestoresParent(t *testing.T) {
	stack := NewCondStack()
	require.NoError(t, stack.PushIf(1, constCond(false)))
	require.NoError(t, stack.Else())
	parent := stack.Top()

	require.NoError(t, stack.PushIf(3, constCond(false)))
	require.NoError(t, stack.Elif(constCond(true)))
	require.NoError(t, stack.Endif())

	assert.Equal(t, parent, stack.Top())
	assert.True(t, stack.Active())
}

func TestCondStack_Errors(t *testing.T) {
	tests := []struct {
		name   string
		run    func(s *CondStack) error
		reason string
	}{
		{"stray endif", func(s *CondStack) error { return s.Endif() }, ReasonUnmatchedEndif},
		{"stray elif", func(s *CondStack) error { return s.Elif(constCond(true)) }, ReasonElifWithoutIf},
		{"stray else", func(s *CondStack) error { return s.Else() }, ReasonElseWithoutIf},
		{"elif after else", func(s *CondStack) error {
			_ = s.PushIf(1, constCond(false))
			_ = s.Else()
			return s.Elif(constCond(true))
		}, ReasonElifAfterElse},
		{"else after else", func(s *CondStack) error {
			_ = s.PushIf(1, constCond(false))
			_ = s.Else()
			return s.Else()
		}, ReasonElseAfterElse},
		{"unterminated", func(s *CondStack) error {
			_ = s.PushIf(4, constCond(true))
			return s.Close()
		}, ReasonUnterminatedIfBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(NewCondStack())
			require.Error(t, err)
			de, ok := AsDirectiveError(err)
			require.True(t, ok)
			assert.Equal(t, ErrorKindUnbalancedConditional, de.Kind)
			assert.Equal(t, tt.reason, de.Reason)
		})
	}
}

func TestCondStack_ConditionErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	stack := NewCondStack()

	err := stack.PushIf(1, func() (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, stack.Depth())
}

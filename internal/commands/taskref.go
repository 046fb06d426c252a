package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Arg string // the reference as typed
	Num int    // 1-based number from list output, 0 if Arg is not numeric
}

// maxListDigits bounds list numbers; longer digit strings are task IDs.
const maxListDigits = 6

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
//  1. No args → ErrTaskRefRequired
//  2. More than one arg → error: unexpected argument
//  3. Up to six digits → a list number, which may also be a numeric task ID
//  4. Anything else → a task ID
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("unexpected argument: %s", args[1])
	}

	arg := args[0]
	if !isAllDigits(arg) || len(arg) > maxListDigits {
		return TaskRef{Arg: arg}, nil
	}
	num, err := strconv.Atoi(arg)
	if err != nil {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
	}
	if num < 1 {
		return TaskRef{}, fmt.Errorf("task number out of range: %d", num)
	}
	return TaskRef{Arg: arg, Num: num}, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

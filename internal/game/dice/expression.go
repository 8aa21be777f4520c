package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Expression is a parsed "NdS+M" roll.
//
// Invariant: Count >= 1 and Sides >= 2 after a successful Parse.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Modifier int
}

// Min returns the smallest possible total.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max returns the largest possible total.
func (e Expression) Max() int { return e.Count*e.Sides + e.Modifier }

// Parse parses expressions of the form "d20", "2d6", "1d11-1" or "3d4+2".
//
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(raw string) (Expression, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", raw)
	}
	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q", raw)
		}
		count = n
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", raw)
	}
	mod := 0
	if m[3] != "" {
		if mod, err = strconv.Atoi(m[3]); err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
	}
	return Expression{Raw: raw, Count: count, Sides: sides, Modifier: mod}, nil
}

// MustParse parses expr and panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}

// Result is the audit trail of one evaluated Expression.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type Result struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the sum of the dice plus the modifier.
func (r Result) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the result as "2d6+3 = [4 5] +3 = 12".
func (r Result) String() string {
	return fmt.Sprintf("%s = %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Roll evaluates e against src.
//
// Precondition: e came from Parse; src is non-nil.
// Postcondition: len(Dice) == e.Count and every die is in [1, e.Sides].
func Roll(e Expression, src Source) Result {
	rolled := make([]int, e.Count)
	for i := range rolled {
		rolled[i] = src.Intn(e.Sides) + 1
	}
	return Result{Expression: e.Raw, Dice: rolled, Modifier: e.Modifier}
}

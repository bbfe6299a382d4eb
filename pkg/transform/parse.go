package transform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadOp is returned by [Parse] when an op string is malformed or names
// an unknown operation.
var ErrBadOp = errors.New("invalid transform op")

var kindsByName = func() map[string]kind {
	m := make(map[string]kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	delete(m, "identity")
	return m
}()

// Parse parses a transform from the compact op notation used by scene
// documents: an op name and an amount separated by whitespace, e.g.
// "rx 30", "tx 1.5", "s 0.5", "hue 36", "sat -0.1". Parse is the inverse
// of [Transform.String].
func Parse(op string) (Transform, error) {
	fields := strings.Fields(op)
	if len(fields) != 2 {
		return Transform{}, fmt.Errorf("%w: %q (want \"<op> <amount>\")", ErrBadOp, op)
	}
	k, ok := kindsByName[fields[0]]
	if !ok {
		return Transform{}, fmt.Errorf("%w: unknown op %q", ErrBadOp, fields[0])
	}
	amount, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Transform{}, fmt.Errorf("%w: %q: bad amount %q", ErrBadOp, op, fields[1])
	}
	t := Transform{k, amount}
	if err := t.Validate(); err != nil {
		return Transform{}, err
	}
	return t, nil
}

// ParseStack parses a list of op strings into a stack.
func ParseStack(ops []string) (Stack, error) {
	s := make(Stack, 0, len(ops))
	for _, op := range ops {
		t, err := Parse(op)
		if err != nil {
			return nil, err
		}
		s = append(s, t)
	}
	return s, nil
}

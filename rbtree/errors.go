package rbtree

import "errors"

// ErrInvalidArgument is returned by New when a required callback is missing.
// Insert does not return it: a comparator result inconsistent with its own
// contract makes Insert panic through internal/assertx, unless built with
// -tags assertions_disabled.
var ErrInvalidArgument = errors.New("rbtree: invalid argument")

// ErrDuplicateKey is returned by Insert when the tree already holds a
// payload whose key compares equal to the one being inserted. The tree is
// left unchanged and the rejected payload is not adopted.
var ErrDuplicateKey = errors.New("rbtree: duplicate key")

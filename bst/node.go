package bst

import (
	"fmt"
	"reflect"
	"strings"
)

// Node represents a single element within the binary search tree (BST).
//
// Each node stores an opaque payload and maintains references to its
// parent and child nodes, allowing for hierarchical structuring within the
// tree. The tree never interprets the payload's bytes; it only compares
// and relocates it.
//
// The BST maintains its structure based on the ordering function defined
// when the tree is created, ensuring efficient search, insertion, and deletion operations.
type Node[P, M any] struct {
	payload             P
	parent, left, right *Node[P, M]
	metadata            M
}

func (n *Node[P, M]) isPayloadNil() bool {
	if v := reflect.ValueOf(n.payload); (v.Kind() == reflect.Ptr ||
		v.Kind() == reflect.Interface ||
		v.Kind() == reflect.Slice ||
		v.Kind() == reflect.Map ||
		v.Kind() == reflect.Chan ||
		v.Kind() == reflect.Func) && v.IsNil() {
		return true
	}
	return false
}

// String returns a string representation of the node.
//
// The output format is "payload [metadata]". If the payload implements
// fmt.Stringer, its String() method is used; otherwise, fmt.Sprintf is
// used. Metadata is always included in brackets, formatted the same way:
// via its String() method if it implements fmt.Stringer, otherwise via
// fmt.Sprintf.
func (n *Node[P, M]) String() string {
	builder := new(strings.Builder)

	if n.isPayloadNil() {
		builder.WriteString("<nil>")
	} else if s, ok := any(n.payload).(fmt.Stringer); ok {
		builder.WriteString(s.String())
	} else {
		builder.WriteString(fmt.Sprintf("%v", n.payload))
	}

	builder.WriteString(" [")
	if s, ok := any(n.metadata).(fmt.Stringer); ok {
		builder.WriteString(s.String())
	} else {
		builder.WriteString(fmt.Sprintf("%v", n.metadata))
	}
	builder.WriteString("]")

	return builder.String()
}

// Package ordered provides the append-only sequence used to hold card
// properties, parameters and values in encounter order.
package ordered

import (
	"fmt"
	"iter"
	"strings"
)

// List is an append-ordered sequence. The zero value is an empty list ready to use.
// Elements are stringified through fmt, so element types that implement
// fmt.Stringer control their own representation.
type List[T any] struct {
	items []T
}

// New returns an empty list, optionally pre-filled with items in the given order.
func New[T any](items ...T) *List[T] {
	l := &List[T]{}
	for _, it := range items {
		l.InsertBack(it)
	}
	return l
}

// InsertBack appends v at the end of the list.
func (l *List[T]) InsertBack(v T) {
	l.items = append(l.items, v)
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Front returns the first element and true, or the zero value and false when empty.
func (l *List[T]) Front() (T, bool) {
	var zero T
	if l.Len() == 0 {
		return zero, false
	}
	return l.items[0], true
}

// All iterates the elements front to back.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if l == nil {
			return
		}
		for i, v := range l.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Values iterates the elements front to back without their positions.
func (l *List[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		if l == nil {
			return
		}
		for _, v := range l.items {
			if !yield(v) {
				return
			}
		}
	}
}

// Find returns the first element for which cmp(element, target) == 0.
func (l *List[T]) Find(target T, cmp func(a, b T) int) (T, bool) {
	for v := range l.Values() {
		if cmp(v, target) == 0 {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Clear drops every element. The list stays usable.
func (l *List[T]) Clear() {
	clear(l.items)
	l.items = l.items[:0]
}

// Slice returns a copy of the elements.
func (l *List[T]) Slice() []T {
	if l == nil {
		return nil
	}
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Join stringifies every element and joins them with sep.
func (l *List[T]) Join(sep string) string {
	var sb strings.Builder
	for i, v := range l.All() {
		if i > 0 {
			sb.WriteString(sep)
		}
		fmt.Fprint(&sb, v)
	}
	return sb.String()
}

// String renders every element on its own line.
func (l *List[T]) String() string {
	var sb strings.Builder
	for v := range l.Values() {
		sb.WriteByte('\n')
		fmt.Fprint(&sb, v)
	}
	return sb.String()
}

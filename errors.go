package confidence

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. The typed errors below match these
// through their Is methods while carrying the dotted path involved.
var (
	// ErrNotConfigured indicates a requested path has no configured value.
	ErrNotConfigured = errors.New("not configured")

	// ErrMergeConflict indicates two sources disagree on a leaf value under
	// error-policy merging.
	ErrMergeConflict = errors.New("merge conflict")

	// ErrUnresolvableReference indicates a ${path} token whose target does
	// not exist.
	ErrUnresolvableReference = errors.New("unresolvable reference")

	// ErrRecursiveReference indicates a self- or mutually-referential cycle
	// between configured references.
	ErrRecursiveReference = errors.New("recursive reference")

	// ErrIllegalEmbed indicates an attempt to splice a whole namespace into
	// a text template.
	ErrIllegalEmbed = errors.New("cannot insert namespace into referring value")

	// ErrKeyType indicates a non-string key encountered while splitting a
	// source mapping.
	ErrKeyType = errors.New("non-string key")
)

// NotConfiguredError is returned when a requested path has no value and no
// default was supplied. Key holds the dotted path walked up to the missing
// step, which may be shorter than the requested path.
type NotConfiguredError struct {
	Key string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("no configuration for key %s", e.Key)
}

func (e *NotConfiguredError) Is(target error) bool {
	return target == ErrNotConfigured
}

// MergeConflictError is returned when two sources provide different leaf
// values at the same path during an error-policy merge.
type MergeConflictError struct {
	Path string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merge conflict at %s", e.Path)
}

func (e *MergeConflictError) Is(target error) bool {
	return target == ErrMergeConflict
}

// ReferenceError is returned when a ${path} reference cannot be resolved.
// Key names the path involved: for an unresolvable reference this is the
// missing key, not the path of the value containing the reference. A
// ReferenceError always propagates through Get and friends, it is never
// substituted by a default.
type ReferenceError struct {
	Key    string
	reason error
}

func (e *ReferenceError) Error() string {
	switch e.reason {
	case ErrRecursiveReference:
		return fmt.Sprintf("cannot resolve recursive reference %s", e.Key)
	case ErrIllegalEmbed:
		return fmt.Sprintf("cannot insert namespace at %s into referring value", e.Key)
	default:
		return fmt.Sprintf("unable to resolve referenced key %s", e.Key)
	}
}

func (e *ReferenceError) Is(target error) bool {
	return target == e.reason
}

// KeyTypeError is returned when a source mapping contains a key that is not
// a string.
type KeyTypeError struct {
	Key any
}

func (e *KeyTypeError) Error() string {
	return fmt.Sprintf("non-string type key %v (%T) not supported", e.Key, e.Key)
}

func (e *KeyTypeError) Is(target error) bool {
	return target == ErrKeyType
}

package setting

import (
	"fmt"
	"strings"
)

// NotFoundError reports an unknown setting name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown setting %q", e.Name)
}

// DecodeError reports a directive argument that does not fit a setting's
// type.
type DecodeError struct {
	Setting string
	Command string
	Raw     string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: cannot decode %s=%q: %v", e.Setting, e.Command, e.Raw, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValueError reports a value a setting rejects.
type ValueError struct {
	Setting string
	Msg     string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s", e.Setting, e.Msg)
}

// CatalogError reports an inconsistent catalog at registry construction.
type CatalogError struct {
	Problems []string
}

func (e *CatalogError) Error() string {
	return "invalid settings catalog: " + strings.Join(e.Problems, "; ")
}

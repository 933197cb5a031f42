package store

import "fmt"

// NotFoundError reports a stored configuration that does not exist.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no stored configuration named %q", e.Name)
}

// AlreadyExistsError reports a name that is already taken.
type AlreadyExistsError struct {
	Name string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("a stored configuration named %q already exists", e.Name)
}

// InvalidNameError reports a name that cannot be used for a bundle.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("%q is not a valid configuration name: %s", e.Name, e.Reason)
}

// BundleError reports an archive that is not a usable bundle.
type BundleError struct {
	Path string
	Msg  string
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("invalid stored configuration %s: %s", e.Path, e.Msg)
}

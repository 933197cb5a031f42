//go:build !unix

package store

func umask() int {
	return 0o022
}

package store

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// FileDiff returns a unified diff of the member files of two
// configurations named as in Side. Members present on one side only are
// diffed against an empty file.
func (s *Store) FileDiff(left, right string) (string, error) {
	l, err := s.Side(left)
	if err != nil {
		return "", err
	}
	r, err := s.Side(right)
	if err != nil {
		return "", err
	}

	names := map[string]bool{}
	for _, f := range l.Files {
		names[f.Name] = true
	}
	for _, f := range r.Files {
		names[f.Name] = true
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	var b strings.Builder
	for _, name := range sorted {
		var a, c string
		if f, ok := l.Files.Get(name); ok {
			a = string(f.Content)
		}
		if f, ok := r.Files.Get(name); ok {
			c = string(f.Content)
		}
		if a == c {
			continue
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        splitLines(a),
			B:        splitLines(c),
			FromFile: sideLabel(left) + "/" + name,
			ToFile:   sideLabel(right) + "/" + name,
			Context:  3,
		})
		if err != nil {
			return "", err
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func sideLabel(name string) string {
	if name == "" {
		return "current"
	}
	return name
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return difflib.SplitLines(s)
}

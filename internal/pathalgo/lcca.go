// Package pathalgo implements the dotted-path arithmetic the
// transition selector and interpreter loop share: LCCA, exit sets,
// entry sets, and default-completion expansion (§4.4).
package pathalgo

import "strings"

// LCCA returns the Least Common Compound Ancestor of two dotted
// paths: the longest shared prefix expressed as whole segments. Two
// paths that share no leading segment have LCCA "" (the document
// root). LCCA(p, p) == p.
func LCCA(a, b string) string {
	if a == b {
		return a
	}
	aSegs := strings.Split(a, ".")
	bSegs := strings.Split(b, ".")
	n := len(aSegs)
	if len(bSegs) < n {
		n = len(bSegs)
	}
	i := 0
	for i < n && aSegs[i] == bSegs[i] {
		i++
	}
	if i == 0 {
		return ""
	}
	return strings.Join(aSegs[:i], ".")
}

// Ancestors returns every ancestor path of leaf, root-first, including
// leaf itself as the last element.
func Ancestors(leaf string) []string {
	segs := strings.Split(leaf, ".")
	out := make([]string, len(segs))
	cur := ""
	for i, seg := range segs {
		if cur != "" {
			cur += "."
		}
		cur += seg
		out[i] = cur
	}
	return out
}

// ParentPath returns the path one segment shorter than p, or "" if p
// is already a top-level segment.
func ParentPath(p string) string {
	i := strings.LastIndexByte(p, '.')
	if i == -1 {
		return ""
	}
	return p[:i]
}

// Depth returns the number of segments in a dotted path; "" has depth
// zero.
func Depth(p string) int {
	if p == "" {
		return 0
	}
	return strings.Count(p, ".") + 1
}

// HasStrictPrefix reports whether path lies strictly under prefix:
// prefix == "" matches everything except the empty path itself;
// otherwise path must begin with prefix + "." .
func HasStrictPrefix(path, prefix string) bool {
	if path == prefix {
		return false
	}
	if prefix == "" {
		return path != ""
	}
	return strings.HasPrefix(path, prefix+".")
}

// IsAncestorOrSelf reports whether ancestor is a prefix of path
// (segment-wise), including the case ancestor == path.
func IsAncestorOrSelf(ancestor, path string) bool {
	if ancestor == path {
		return true
	}
	if ancestor == "" {
		return true
	}
	return strings.HasPrefix(path, ancestor+".")
}

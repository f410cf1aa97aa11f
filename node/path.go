package node

import (
	"strings"

	"ocm-mapper/ocmerr"
)

// Root is the path of the root node.
const Root = "/"

const invalidPathChars = "[]*|"

// ValidatePath checks that p is an absolute, normalized node path.
func ValidatePath(p string) error {
	if p == "" {
		return ocmerr.New(ocmerr.KindInvalidPath, ocmerr.Message("empty path"))
	}

	if p == Root {
		return nil
	}

	if !strings.HasPrefix(p, Root) {
		return ocmerr.New(ocmerr.KindInvalidPath, ocmerr.Path(p), ocmerr.Message("path must be absolute"))
	}

	if strings.HasSuffix(p, "/") {
		return ocmerr.New(ocmerr.KindInvalidPath, ocmerr.Path(p), ocmerr.Message("trailing slash"))
	}

	for _, seg := range Segments(p) {
		switch {
		case seg == "":
			return ocmerr.New(ocmerr.KindInvalidPath, ocmerr.Path(p), ocmerr.Message("empty segment"))
		case seg == "." || seg == "..":
			return ocmerr.New(ocmerr.KindInvalidPath, ocmerr.Path(p), ocmerr.Message("relative segment %q", seg))
		case strings.ContainsAny(seg, invalidPathChars):
			return ocmerr.New(ocmerr.KindInvalidPath, ocmerr.Path(p), ocmerr.Message("segment %q contains one of %q", seg, invalidPathChars))
		case strings.TrimSpace(seg) != seg:
			return ocmerr.New(ocmerr.KindInvalidPath, ocmerr.Path(p), ocmerr.Message("segment %q has surrounding whitespace", seg))
		}
	}

	return nil
}

// Segments splits an absolute path into its names. The root has no segments.
func Segments(p string) []string {
	p = strings.TrimPrefix(p, Root)
	if p == "" {
		return nil
	}

	return strings.Split(p, "/")
}

// Name returns the last segment of p ("" for the root).
func Name(p string) string {
	if p == Root || p == "" {
		return ""
	}

	return p[strings.LastIndex(p, "/")+1:]
}

// Parent returns the parent path of p ("" for the root).
func Parent(p string) string {
	if p == Root || p == "" {
		return ""
	}

	idx := strings.LastIndex(p, "/")
	if idx <= 0 {
		return Root
	}

	return p[:idx]
}

// Join appends a child name to a parent path.
func Join(parent, name string) string {
	if parent == Root || parent == "" {
		return Root + name
	}

	return parent + "/" + name
}

// IsDescendant reports whether p lies strictly below ancestor.
func IsDescendant(ancestor, p string) bool {
	if ancestor == Root {
		return p != Root && strings.HasPrefix(p, Root)
	}

	return strings.HasPrefix(p, ancestor+"/")
}

package util

import (
	"path"
	"strings"
)

// NamespaceKey joins namespace segments into a slash separated storage
// prefix. Empty and traversal segments are dropped.
func NamespaceKey(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		for _, seg := range strings.Split(strings.ReplaceAll(p, "\\", "/"), "/") {
			seg = strings.TrimSpace(seg)
			if seg == "" || seg == "." || seg == ".." {
				continue
			}
			clean = append(clean, seg)
		}
	}
	if len(clean) == 0 {
		return "misc"
	}
	return path.Join(clean...)
}

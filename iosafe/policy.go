// Package iosafe enforces the file-access policy applied to IOLOAD and
// IOSAVE: every path is resolved relative to a fixed root directory and
// checked against an allow-list of regular expressions before the VM is
// permitted to touch the filesystem.
package iosafe

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Policy is the resolved, ready-to-check form of a file-access
// configuration: a containment root plus one allow-list per direction.
type Policy struct {
	Root        string
	LoadAllow   []*regexp.Regexp
	SaveAllow   []*regexp.Regexp
}

// NewPolicy compiles the given root and pattern lists into a Policy. root
// is made absolute and cleaned; relative allow-list patterns are matched
// against the path relative to root.
func NewPolicy(root string, loadPatterns, savePatterns []string) (*Policy, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("iosafe: resolving root %q: %w", root, err)
	}
	p := &Policy{Root: filepath.Clean(absRoot)}

	p.LoadAllow, err = compileAll(loadPatterns)
	if err != nil {
		return nil, fmt.Errorf("iosafe: load allow-list: %w", err)
	}
	p.SaveAllow, err = compileAll(savePatterns)
	if err != nil {
		return nil, fmt.Errorf("iosafe: save allow-list: %w", err)
	}
	return p, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pat, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// CheckLoad resolves path for reading: it must stay within Root and match
// at least one entry of LoadAllow.
func (p *Policy) CheckLoad(path string) (string, error) {
	return p.check(path, p.LoadAllow)
}

// CheckSave resolves path for writing: it must stay within Root and match
// at least one entry of SaveAllow.
func (p *Policy) CheckSave(path string) (string, error) {
	return p.check(path, p.SaveAllow)
}

func (p *Policy) check(path string, allow []*regexp.Regexp) (string, error) {
	if p == nil {
		return "", fmt.Errorf("iosafe: no policy installed, all file access denied")
	}
	if len(allow) == 0 {
		return "", fmt.Errorf("iosafe: allow-list is empty, all file access denied")
	}

	joined := filepath.Clean(filepath.Join(p.Root, path))
	rel, err := filepath.Rel(p.Root, joined)
	if err != nil {
		return "", fmt.Errorf("iosafe: %q does not resolve under root: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("iosafe: %q escapes root %q", path, p.Root)
	}

	relSlash := filepath.ToSlash(rel)
	for _, re := range allow {
		if re.MatchString(relSlash) {
			return joined, nil
		}
	}
	return "", fmt.Errorf("iosafe: %q does not match the allow-list", relSlash)
}

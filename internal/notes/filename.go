// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notes

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-companion/pkg/types"
)

// unsafeChars are replaced with a hyphen before use in a filename.
var unsafeChars = regexp.MustCompile(`[/\\:*?"<>|]`)

// yearRe finds a plausible publication year anywhere in a date string.
var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Sanitize replaces filesystem-hostile characters with hyphens.
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "-")
}

// AuthorString derives the APA-like author label used in note filenames
// and frontmatter: one author "Surname, F.", two "A & B", three or more
// "A et al.". An empty creator list yields "Unknown"; inheriting a
// parent record's creators is the caller's job.
func AuthorString(creators []types.Creator) string {
	switch len(creators) {
	case 0:
		return "Unknown"
	case 1:
		c := creators[0]
		if c.FirstName != "" {
			initial := []rune(c.FirstName)[0]
			return fmt.Sprintf("%s, %c.", c.LastName, initial)
		}
		return c.LastName
	case 2:
		return creators[0].LastName + " & " + creators[1].LastName
	default:
		return creators[0].LastName + " et al."
	}
}

// YearFromDate extracts a 4-digit year from a free-form date string.
// It tries, in order: a 4-digit prefix, slash-separated forms (with a
// two-digit pivot where 00-30 means 2000s), and a year anywhere in the
// string. Anything else yields types.YearUnknown.
func YearFromDate(date string) string {
	s := strings.TrimSpace(date)
	if s == "" {
		return types.YearUnknown
	}

	if len(s) >= 4 && isDigits(s[:4]) {
		return s[:4]
	}

	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		for _, part := range parts {
			if len(part) == 4 && isDigits(part) {
				return part
			}
		}
		last := parts[len(parts)-1]
		if len(last) == 2 && isDigits(last) {
			v, _ := strconv.Atoi(last)
			if v <= 30 {
				return fmt.Sprintf("20%02d", v)
			}
			return fmt.Sprintf("19%02d", v)
		}
	}

	if m := yearRe.FindString(s); m != "" {
		return m
	}
	return types.YearUnknown
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Namespace answers whether a note name is already taken.
type Namespace interface {
	Exists(name string) bool
}

// DirNamespace is a Namespace backed by the files of one directory.
type DirNamespace struct {
	Dir string
}

// Exists reports whether a file with the given name is present.
func (d DirNamespace) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(d.Dir, name))
	return err == nil
}

// UniqueName resolves the note filename for an author and year under
// the given collision policy. Under DuplicateReplace the base name is
// always used and the second return reports whether it displaces an
// existing note. Under DuplicateSuffix the year is suffixed with a..z
// and then -1, -2, ... until a free name is found, so an existing note
// is never overwritten and the second return is always false.
func UniqueName(ns Namespace, author, year string, mode types.DuplicateMode) (string, bool) {
	author = Sanitize(author)
	year = Sanitize(year)

	base := fmt.Sprintf("%s (%s).md", author, year)
	if mode == types.DuplicateReplace {
		return base, ns.Exists(base)
	}

	if !ns.Exists(base) {
		return base, false
	}
	for c := 'a'; c <= 'z'; c++ {
		name := fmt.Sprintf("%s (%s%c).md", author, year, c)
		if !ns.Exists(name) {
			return name, false
		}
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s (%s-%d).md", author, year, n)
		if !ns.Exists(name) {
			return name, false
		}
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notes

import (
	"fmt"
	"testing"

	"github.com/pdiddy/paper-companion/pkg/types"
)

func TestAuthorString(t *testing.T) {
	tests := []struct {
		name     string
		creators []types.Creator
		want     string
	}{
		{"no creators", nil, "Unknown"},
		{"single with first name", []types.Creator{{LastName: "Lee", FirstName: "Ada"}}, "Lee, A."},
		{"single without first name", []types.Creator{{LastName: "Lee"}}, "Lee"},
		{"two authors", []types.Creator{{LastName: "Lee"}, {LastName: "Okafor"}}, "Lee & Okafor"},
		{"three authors", []types.Creator{{LastName: "Lee"}, {LastName: "Okafor"}, {LastName: "Chen"}}, "Lee et al."},
		{"five authors", []types.Creator{{LastName: "A"}, {LastName: "B"}, {LastName: "C"}, {LastName: "D"}, {LastName: "E"}}, "A et al."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AuthorString(tt.creators); got != tt.want {
				t.Errorf("AuthorString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestYearFromDate(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2021-05-01", "2021"},
		{"1998", "1998"},
		{"May 2021", "2021"},
		{"15/3/2021", "2021"},
		{"2020/03/15", "2020"},
		{"3/15/21", "2021"},
		{"3/15/98", "1998"},
		{"1/30", "2030"},
		{"1/31", "1931"},
		{"circa 1999, reprinted", "1999"},
		{"", "n.d."},
		{"undated", "n.d."},
		{"21", "n.d."},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if got := YearFromDate(tt.date); got != tt.want {
				t.Errorf("YearFromDate(%q) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize(`What? A "Study" of C:/paths|pipes`)
	want := "What- A -Study- of C--paths-pipes"
	if got != want {
		t.Errorf("Sanitize() = %q, want %q", got, want)
	}
}

// mapNS is a Namespace backed by a set of taken names.
type mapNS map[string]bool

func (m mapNS) Exists(name string) bool { return m[name] }

func TestUniqueNameReplace(t *testing.T) {
	ns := mapNS{"Lee (2020).md": true}

	name, collided := UniqueName(ns, "Lee", "2020", types.DuplicateReplace)
	if name != "Lee (2020).md" || !collided {
		t.Errorf("UniqueName() = %q, %v; want base name with collision", name, collided)
	}

	name, collided = UniqueName(ns, "Okafor", "2020", types.DuplicateReplace)
	if name != "Okafor (2020).md" || collided {
		t.Errorf("UniqueName() = %q, %v; want free base name", name, collided)
	}
}

func TestUniqueNameSuffix(t *testing.T) {
	ns := mapNS{}

	name, collided := UniqueName(ns, "Lee", "2020", types.DuplicateSuffix)
	if name != "Lee (2020).md" || collided {
		t.Fatalf("UniqueName() = %q, %v; want free base name", name, collided)
	}

	ns["Lee (2020).md"] = true
	name, _ = UniqueName(ns, "Lee", "2020", types.DuplicateSuffix)
	if name != "Lee (2020a).md" {
		t.Errorf("UniqueName() = %q, want first letter suffix", name)
	}
}

func TestUniqueNameSuffixExhaustsLetters(t *testing.T) {
	ns := mapNS{"Lee (2020).md": true}
	for c := 'a'; c <= 'z'; c++ {
		ns[fmt.Sprintf("Lee (2020%c).md", c)] = true
	}

	name, collided := UniqueName(ns, "Lee", "2020", types.DuplicateSuffix)
	if name != "Lee (2020-1).md" || collided {
		t.Errorf("UniqueName() = %q, %v; want numeric fallback", name, collided)
	}

	ns["Lee (2020-1).md"] = true
	name, _ = UniqueName(ns, "Lee", "2020", types.DuplicateSuffix)
	if name != "Lee (2020-2).md" {
		t.Errorf("UniqueName() = %q, want incremented numeric suffix", name)
	}
}

func TestUniqueNameSanitizesAuthorAndYear(t *testing.T) {
	name, _ := UniqueName(mapNS{}, `Smith/Jones`, `20?1`, types.DuplicateSuffix)
	if name != "Smith-Jones (20-1).md" {
		t.Errorf("UniqueName() = %q, want sanitized name", name)
	}
}

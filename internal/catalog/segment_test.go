package catalog

import (
	"strings"
	"testing"

	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/util"
)

func TestSplitTrailingGroup(t *testing.T) {
	cases := []struct {
		in, head, inner string
		ok              bool
	}{
		{"Jean Dupont (auteur)", "Jean Dupont", "auteur", true},
		{"  Jean Dupont  ", "Jean Dupont", "", false},
		{"Kinsman (Recueil) (1-120)", "Kinsman (Recueil)", "1-120", true},
		{"Note (voir (annexe))", "Note", "voir (annexe)", true},
		{"Titre ()", "Titre", "", true},
		{"unbalanced)", "unbalanced)", "", false},
		{"(seul)", "", "seul", true},
	}
	for _, c := range cases {
		head, inner, ok := splitTrailingGroup(c.in)
		if head != c.head || inner != c.inner || ok != c.ok {
			t.Errorf("splitTrailingGroup(%q) = %q, %q, %v; want %q, %q, %v", c.in, head, inner, ok, c.head, c.inner, c.ok)
		}
	}
}

func FuzzSplitTrailingGroup(f *testing.F) {
	for _, seed := range []string{"Jean Dupont (auteur)", "a (b (c)) (d)", ")(", "((x)", "Titre ()", "é (ü)"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, s string) {
		head, inner, ok := splitTrailingGroup(s)
		if !ok {
			return
		}
		trimmed := strings.TrimSpace(s)
		if !strings.HasPrefix(trimmed, head) {
			t.Fatalf("head %q is not a prefix of %q", head, trimmed)
		}
		if !strings.HasSuffix(trimmed, "("+inner+")") {
			t.Fatalf("group %q is not the suffix of %q", inner, trimmed)
		}
		depth := 0
		for _, r := range inner {
			switch r {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth < 0 {
				t.Fatalf("unbalanced group %q", inner)
			}
		}
		if depth != 0 {
			t.Fatalf("unbalanced group %q", inner)
		}
	})
}

func FuzzWorkSegmentReadBack(f *testing.F) {
	f.Add(uint16(1), "Histoire", "p.1-20")
	f.Add(uint16(0), "1984", "")
	f.Add(uint16(3), "Kinsman (Recueil)", "")
	f.Add(uint16(2), "Story (p", "p(1)-2")
	f.Add(uint16(7), "Fin)", "x (y)")
	f.Fuzz(func(t *testing.T, order uint16, title, pages string) {
		// Titles are trimmed on input and page ranges are balanced.
		if title != strings.TrimSpace(title) || title == "" {
			return
		}
		if pages != strings.TrimSpace(pages) || !util.IsBalanced(pages) {
			return
		}
		link := &model.BookWork{Work: &model.Work{Title: title}, Order: int32(order), Pages: pages}
		text := formatWorkSegment(link)
		got, err := parseWorkSegment(text)
		if err != nil {
			t.Fatalf("parseWorkSegment(%q): %v", text, err)
		}
		if got.Title != title || got.Order != int32(order) || got.Pages != pages {
			t.Fatalf("%q read back as %+v", text, *got)
		}
	})
}

func FuzzAuthorSegmentReadBack(f *testing.F) {
	f.Add("Jean", "Dupont", "auteur")
	f.Add("Jean (Jr.)", "Dupont", "")
	f.Add("", "Moebius", "trad. (fr)")
	f.Add("Anne", ")", "")
	f.Fuzz(func(t *testing.T, firstName, lastName, role string) {
		// A last name is a single token and roles are balanced.
		if lastName == "" || util.HasSpace(lastName) {
			return
		}
		if role != strings.TrimSpace(role) || !util.IsBalanced(role) {
			return
		}
		firstName = strings.Join(strings.Fields(firstName), " ")
		link := &model.BookAuthor{Author: &model.Author{LastName: lastName, FirstName: firstName}, Role: role}
		text := formatAuthorSegment(link)
		got, err := parseAuthorSegment(text)
		if err != nil {
			t.Fatalf("parseAuthorSegment(%q): %v", text, err)
		}
		if got.LastName != lastName || got.FirstName != firstName || got.Role != role {
			t.Fatalf("%q read back as %+v", text, *got)
		}
	})
}

func TestParseAuthorSegment(t *testing.T) {
	cases := []struct {
		in   string
		want authorSegment
	}{
		{"Jean Dupont (auteur)", authorSegment{"Dupont", "Jean", "auteur"}},
		{"Anne Marie Martin", authorSegment{"Martin", "Anne Marie", ""}},
		{"Moebius", authorSegment{"Moebius", "", ""}},
		{"Jean (Jr.) Dupont ( traducteur )", authorSegment{"Dupont", "Jean (Jr.)", "traducteur"}},
		{"Dupont ()", authorSegment{"Dupont", "", ""}},
	}
	for _, c := range cases {
		got, err := parseAuthorSegment(c.in)
		if err != nil {
			t.Fatalf("parseAuthorSegment(%q): %v", c.in, err)
		}
		if *got != c.want {
			t.Errorf("parseAuthorSegment(%q) = %+v, want %+v", c.in, *got, c.want)
		}
	}
	if _, err := parseAuthorSegment("(auteur)"); err == nil {
		t.Errorf("Expected an error for a role without a name")
	}
}

func TestParseWorkSegment(t *testing.T) {
	cases := []struct {
		in   string
		want workSegment
	}{
		{"1 Histoire 1 (p.1-20)", workSegment{1, "Histoire 1", "p.1-20"}},
		{"2 Histoire 2", workSegment{2, "Histoire 2", ""}},
		{"1984", workSegment{0, "1984", ""}},
		{"0 1984", workSegment{0, "1984", ""}},
		{"2001: l'odyssée de l'espace", workSegment{0, "2001: l'odyssée de l'espace", ""}},
		{"Sans ordre (12-30)", workSegment{0, "Sans ordre", "12-30"}},
		{"3 Kinsman (Recueil) ()", workSegment{3, "Kinsman (Recueil)", ""}},
		{"1\tTab title", workSegment{1, "Tab title", ""}},
		{"4  Deux espaces", workSegment{4, "Deux espaces", ""}},
	}
	for _, c := range cases {
		got, err := parseWorkSegment(c.in)
		if err != nil {
			t.Fatalf("parseWorkSegment(%q): %v", c.in, err)
		}
		if *got != c.want {
			t.Errorf("parseWorkSegment(%q) = %+v, want %+v", c.in, *got, c.want)
		}
	}
	if _, err := parseWorkSegment("(1-20)"); err == nil {
		t.Errorf("Expected an error for pages without a title")
	}
	if _, err := parseWorkSegment("99999999999 Titre"); err == nil {
		t.Errorf("Expected an error for an order out of range")
	}
}

func TestFormatSegmentsReadBack(t *testing.T) {
	links := []*model.BookWork{
		{Work: &model.Work{Title: "2 Histoires"}},
		{Work: &model.Work{Title: "Kinsman (Recueil)"}, Order: 3},
		{Work: &model.Work{Title: "Histoire"}, Order: 1, Pages: "p.1-20"},
	}
	for _, link := range links {
		text := formatWorkSegment(link)
		got, err := parseWorkSegment(text)
		if err != nil {
			t.Fatalf("parseWorkSegment(%q): %v", text, err)
		}
		if got.Title != link.Work.Title || got.Order != link.Order || got.Pages != link.Pages {
			t.Errorf("%q read back as %+v", text, *got)
		}
	}

	author := &model.BookAuthor{Author: &model.Author{LastName: "Dupont", FirstName: "Jean (Jr.)"}}
	text := formatAuthorSegment(author)
	got, err := parseAuthorSegment(text)
	if err != nil {
		t.Fatalf("parseAuthorSegment(%q): %v", text, err)
	}
	if got.FirstName != "Jean (Jr.)" || got.Role != "" {
		t.Errorf("%q read back as %+v", text, *got)
	}
}

func TestParseLocation(t *testing.T) {
	cases := []struct {
		in     string
		zone   string
		column int32
		floor  string
		ok     bool
	}{
		{"Zone C10 EA", "Zone", 10, "A", true},
		{"C3 E2", "", 3, "2", true},
		{"Grand Salon C25 EB", "Grand Salon", 25, "B", true},
		{"EB C25 Salon", "Salon", 25, "B", true},
		{"Salon C25", "Salon", 25, "", false},
		{"Cave EB", "Cave", 0, "B", false},
		{"Entrée C1 EA", "Entrée", 1, "A", true},
		{"Salon C2 C3 EA", "Salon C2", 3, "A", true},
		{"", "", 0, "", false},
	}
	for _, c := range cases {
		zone, column, floor, ok := parseLocation(c.in)
		if zone != c.zone || column != c.column || floor != c.floor || ok != c.ok {
			t.Errorf("parseLocation(%q) = %q, %d, %q, %v", c.in, zone, column, floor, ok)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" Roman, ,Aventure ,", ",")
	if strings.Join(got, "|") != "Roman|Aventure" {
		t.Errorf("Unexpected list %v", got)
	}
}

package catalog

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/Xunop/library-tracker/internal/model"
	"github.com/Xunop/library-tracker/internal/util"
)

// Multi-valued CSV cells are lists of segments:
//
//	segment := text [ "(" balanced ")" ]
//
// The trailing group holds an author role or a work page range. Parentheses
// inside the text are kept as long as the group at the end is balanced, so
// "Kinsman (Recueil) (1-120)" has text "Kinsman (Recueil)" and group "1-120".

// splitTrailingGroup returns the text before the trailing parenthesized
// group and the raw content of that group. ok is false when the segment does
// not end with a balanced group.
func splitTrailingGroup(s string) (head, inner string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, ")") {
		return s, "", false
	}
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[:i]), s[i+1 : len(s)-1], true
			}
		}
	}
	return s, "", false
}

// splitList splits a cell on sep, trims each item and drops empty ones.
func splitList(cell, sep string) []string {
	parts := strings.Split(cell, sep)
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			list = append(list, p)
		}
	}
	return list
}

type authorSegment struct {
	LastName  string
	FirstName string
	Role      string
}

// parseAuthorSegment reads "<first names> <last name> (<role>)". The last
// whitespace separated token is the last name.
func parseAuthorSegment(segment string) (*authorSegment, error) {
	name := strings.TrimSpace(segment)
	role := ""
	if head, inner, ok := splitTrailingGroup(name); ok {
		name, role = head, strings.TrimSpace(inner)
	}
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return nil, errors.Errorf("author without a name in %q", segment)
	}
	return &authorSegment{
		LastName:  tokens[len(tokens)-1],
		FirstName: strings.Join(tokens[:len(tokens)-1], " "),
		Role:      role,
	}, nil
}

func formatAuthorSegment(link *model.BookAuthor) string {
	return withGroup(link.Author.FullName(), link.Role)
}

type workSegment struct {
	Order int32
	Title string
	Pages string
}

// parseWorkSegment reads "<order> <title> (<pages>)". The order is a leading
// run of digits followed by whitespace. A title made only of digits, such as
// "1984", stays a title.
func parseWorkSegment(segment string) (*workSegment, error) {
	text := strings.TrimSpace(segment)
	work := &workSegment{}
	if head, inner, ok := splitTrailingGroup(text); ok {
		text, work.Pages = head, strings.TrimSpace(inner)
	}
	if at := strings.IndexFunc(text, unicode.IsSpace); at > 0 && util.IsDigits(text[:at]) {
		first := text[:at]
		if rest := strings.TrimSpace(text[at:]); rest != "" {
			order, err := util.ConvertStringToInt32(first)
			if err != nil {
				return nil, errors.Errorf("invalid work order %q", first)
			}
			work.Order, text = order, rest
		}
	}
	if text == "" {
		return nil, errors.Errorf("work without a title in %q", segment)
	}
	work.Title = text
	return work, nil
}

// formatWorkSegment always writes the order, 0 when missing, so a title
// starting with digits is not read back as an order.
func formatWorkSegment(link *model.BookWork) string {
	return withGroup(strconv.Itoa(int(link.Order))+" "+link.Work.Title, link.Pages)
}

// withGroup appends " (<group>)". An empty group is written as "()" only
// when the text itself ends with ")", so that its own parentheses are not
// read back as the group.
func withGroup(text, group string) string {
	if group != "" {
		return text + " (" + group + ")"
	}
	if strings.HasSuffix(text, ")") {
		return text + " ()"
	}
	return text
}

// parseLocation reads "<zone> C<column> E<floor>". The last C<digits> token
// is the column and the last E<text> token the floor; every other token is
// joined into the zone, so a zone such as "Entrée" survives a round trip. ok
// is false unless both the column and the floor were found.
func parseLocation(cell string) (zone string, column int32, floor string, ok bool) {
	tokens := strings.Fields(cell)
	columnAt, floorAt := -1, -1
	for i, token := range tokens {
		switch {
		case strings.HasPrefix(token, "C") && util.IsDigits(token[1:]):
			if v, err := util.ConvertStringToInt32(token[1:]); err == nil {
				column, columnAt = v, i
			}
		case strings.HasPrefix(token, "E") && len(token) > 1:
			floorAt = i
		}
	}
	zoneTokens := make([]string, 0, len(tokens))
	for i, token := range tokens {
		if i != columnAt && i != floorAt {
			zoneTokens = append(zoneTokens, token)
		}
	}
	if columnAt < 0 {
		column = 0
	}
	if floorAt >= 0 {
		floor = tokens[floorAt][1:]
	}
	return strings.Join(zoneTokens, " "), column, floor, columnAt >= 0 && floorAt >= 0
}

func formatLocation(location *model.Location) string {
	if location == nil {
		return ""
	}
	return location.String()
}

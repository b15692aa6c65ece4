package enrich

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ArticleInfo is what an article page contributes to a record.
type ArticleInfo struct {
	VenueID        string
	Country        string
	CitationCount  int
	Visualizations int
}

// VenueMetrics are the bibliometric indicators on a venue page.
type VenueMetrics struct {
	ImpactFactor   float64
	Eigenfactor    float64
	InfluenceScore float64
}

// ParseArticle extracts venue, country, citation and view counts from an
// article page. Missing elements leave the zero value.
func ParseArticle(page []byte) (ArticleInfo, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return ArticleInfo{}, fmt.Errorf("%w: %v", ErrInvalidHTML, err)
	}

	var info ArticleInfo
	info.VenueID = venueID(doc)

	if n := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Span && attr(n, "id") == "authorAffiliations"
	}); n != nil {
		info.Country = countryFromAffiliation(attr(n, "class"))
	}

	info.CitationCount = leadingCount(findFirst(doc, divWithClass("countHeader")))
	info.Visualizations = leadingCount(findFirst(doc, divWithClass("total-count")))

	return info, nil
}

// ParseVenue extracts the impact factor, eigenfactor and article influence
// score from a venue page. They are the first span of the first three links
// in the second block of #journal-page-bdy.
func ParseVenue(page []byte) (VenueMetrics, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return VenueMetrics{}, fmt.Errorf("%w: %v", ErrInvalidHTML, err)
	}

	var m VenueMetrics
	body := findFirst(doc, func(n *html.Node) bool { return attr(n, "id") == "journal-page-bdy" })
	block := nthChild(nthChild(body, atom.Div, 1), atom.Div, 2)
	if block == nil {
		return m, nil
	}

	targets := []*float64{&m.ImpactFactor, &m.Eigenfactor, &m.InfluenceScore}
	for i, dst := range targets {
		span := nthChild(nthChild(block, atom.A, i+1), atom.Span, 1)
		if span != nil {
			*dst = parseMetric(textContent(span))
		}
	}
	return m, nil
}

// venueID reads the punumber query value of the first link in the second
// block under #articleDetails. Non-numeric values are ignored.
func venueID(doc *html.Node) string {
	details := findFirst(doc, func(n *html.Node) bool { return attr(n, "id") == "articleDetails" })
	if details == nil {
		return ""
	}

	for c := details.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Div {
			continue
		}
		link := nthChild(nthChild(c, atom.Div, 2), atom.A, 1)
		if link == nil {
			continue
		}
		return punumber(attr(link, "href"))
	}
	return ""
}

func punumber(href string) string {
	var tokens []string
	for _, tok := range strings.Split(href, "punumber=") {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) < 2 || !isDigits(tokens[1]) {
		return ""
	}
	return tokens[1]
}

// countryFromAffiliation takes the last comma-separated token of the
// affiliation class, dropping the "|c|" marker some pages append.
func countryFromAffiliation(class string) string {
	var last string
	for _, tok := range strings.Split(class, ",") {
		if tok != "" {
			last = tok
		}
	}
	return strings.TrimSpace(strings.ReplaceAll(last, "|c|", ""))
}

// leadingCount parses the first word of text like "12 Citations".
// A lone number with no label is not a count.
func leadingCount(n *html.Node) int {
	if n == nil {
		return 0
	}
	tokens := strings.Fields(textContent(n))
	if len(tokens) < 2 {
		return 0
	}
	count, err := strconv.Atoi(tokens[0])
	if err != nil {
		return 0
	}
	return count
}

func parseMetric(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func divWithClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.DataAtom == atom.Div && attr(n, "class") == class
	}
}

// findFirst returns the first element in document order matching pred.
func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// nthChild returns the nth (1-based) child element of n with the given tag.
func nthChild(n *html.Node, tag atom.Atom, nth int) *html.Node {
	if n == nil {
		return nil
	}
	seen := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == tag {
			seen++
			if seen == nth {
				return c
			}
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

package parser

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseError reports markup that is missing structure the scraper depends
// on, such as a search page without its pagination controls.
type ParseError struct {
	Op  string
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// MaxPageID extracts the highest search page number from a search page.
// The site renders the jump to the last page as an anchor whose visible
// text is just an ellipsis; the page number is the href's page parameter.
// Pagination repeats the same target in several ellipsis anchors, so only
// the first one is consulted.
func MaxPageID(htmlContent string) (int, error) {
	doc, err := newDoc(htmlContent)
	if err != nil {
		return 0, err
	}

	anchor := findEllipsisAnchor(doc)
	if anchor == nil {
		return 0, &ParseError{Op: "max page id", Msg: "no ellipsis pagination link on the page"}
	}

	href, ok := anchor.Attr("href")
	if !ok {
		return 0, &ParseError{Op: "max page id", Msg: "ellipsis pagination link has no href"}
	}

	target, err := url.Parse(href)
	if err != nil {
		return 0, &ParseError{Op: "max page id", Msg: fmt.Sprintf("unparseable pagination href %q", href)}
	}

	page := target.Query().Get("page")
	if page == "" {
		return 0, &ParseError{Op: "max page id", Msg: fmt.Sprintf("no page parameter in %q", href)}
	}

	id, err := strconv.Atoi(page)
	if err != nil {
		return 0, &ParseError{Op: "max page id", Msg: fmt.Sprintf("non-numeric page parameter in %q", href)}
	}

	return id, nil
}

// findEllipsisAnchor returns the first anchor whose trimmed text is an
// ellipsis. The site has used both the ASCII and the Unicode glyph.
func findEllipsisAnchor(doc *goquery.Document) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.TrimSpace(a.Text())
		if text == "..." || text == "…" {
			found = a
			return false
		}
		return true
	})
	return found
}

// ListingLinks returns every listing href on a search page, in document
// order. Duplicates are kept; dedup happens downstream against the
// records already in the output table.
func ListingLinks(htmlContent string) ([]string, error) {
	doc, err := newDoc(htmlContent)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "/listing/") {
			links = append(links, href)
		}
	})
	return links, nil
}

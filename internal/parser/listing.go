package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"roamscan/internal/models"
)

// Classes of the two grouped feature sections on a listing page.
const (
	LoanFeatureClass = "loan-feature"
	HomeFeatureClass = "home-feature"
)

var (
	// Regexes for the one-line summary under the address, e.g. "3 beds 2 baths 1,850 sqft"
	bedsRegex  = regexp.MustCompile(`(\d+)\s*beds?`)
	bathsRegex = regexp.MustCompile(`(\d+)\s*baths?`)
	sqftRegex  = regexp.MustCompile(`([\d,]+)\s*sqft`)
)

// PageFields are the head and summary values read off a listing page.
// Any of them may be nil when the source element is missing.
type PageFields struct {
	Title        *string
	Description  *string
	Address      *string
	City         *string
	ImageURL     *string
	Bedrooms     *int
	Bathrooms    *int
	Sqft         *int
	CanonicalURL *string
}

// ParseListing extracts one full listing record from a listing page.
// pageURL is the URL the markup came from; it becomes the record key
// when the page declares no canonical URL. Missing elements never fail
// the record, they just leave the matching fields nil.
func ParseListing(htmlContent, pageURL string) (models.Listing, error) {
	doc, err := newDoc(htmlContent)
	if err != nil {
		return models.Listing{}, err
	}

	fields := parsePageFields(doc)
	loan := sectionDetails(doc, LoanFeatureClass)
	home := sectionDetails(doc, HomeFeatureClass)
	financials := calculatorDetails(doc)
	description := descriptionText(doc)

	listing := models.Listing{
		ContainsDock:     containsFold(description, "dock"),
		City:             fields.City,
		URL:              pageURL,
		Address:          fields.Address,
		Bedrooms:         fields.Bedrooms,
		Bathrooms:        fields.Bathrooms,
		Sqft:             fields.Sqft,
		ListingPrice:     detailValue(financials, "Listing price"),
		CashDownPayment:  detailValue(financials, "Your cash down payment"),
		LoanType:         detailValue(loan, "Loan Type"),
		Rate:             detailValue(loan, "Rate"),
		RemainingBalance: detailValue(loan, "Remaining balance"),
		MonthlyPayment:   detailValue(home, "Total"),
	}
	if fields.CanonicalURL != nil {
		listing.URL = *fields.CanonicalURL
	}

	return listing, nil
}

// ParsePageFields reads the head and address-summary fields of a listing page.
func ParsePageFields(htmlContent string) (PageFields, error) {
	doc, err := newDoc(htmlContent)
	if err != nil {
		return PageFields{}, err
	}
	return parsePageFields(doc), nil
}

// SectionDetails parses every grouped feature div of the given class into
// a key/value map, first descendant div text keying the rest.
func SectionDetails(htmlContent, class string) (map[string][]string, error) {
	doc, err := newDoc(htmlContent)
	if err != nil {
		return nil, err
	}
	return sectionDetails(doc, class), nil
}

// CalculatorDetails parses the mortgage calculator rows into a key/value map.
func CalculatorDetails(htmlContent string) (map[string][]string, error) {
	doc, err := newDoc(htmlContent)
	if err != nil {
		return nil, err
	}
	return calculatorDetails(doc), nil
}

// Description returns the listing's prose description, nil when the page
// has none.
func Description(htmlContent string) (*string, error) {
	doc, err := newDoc(htmlContent)
	if err != nil {
		return nil, err
	}
	return descriptionText(doc), nil
}

func newDoc(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}
	return doc, nil
}

func parsePageFields(doc *goquery.Document) PageFields {
	fields := PageFields{
		Title:        textField(doc, "title"),
		Description:  attrField(doc, "meta[name='description']", "content"),
		ImageURL:     attrField(doc, "meta[property='og:image']", "content"),
		CanonicalURL: attrField(doc, "link[rel='canonical']", "href"),
	}

	fields.Address = textField(doc, "h1.fs-14.text-body-secondary.fw-bold")
	if fields.Address == nil && fields.CanonicalURL != nil {
		// No address heading on the page, rebuild it from the URL slug.
		addr := strings.ToUpper(strings.ReplaceAll(lastSegment(*fields.CanonicalURL), "-", " "))
		fields.Address = &addr
	}

	if summary := textField(doc, "p.fs-6.pb-1.text-body"); summary != nil {
		fields.Bedrooms = matchInt(bedsRegex, *summary)
		fields.Bathrooms = matchInt(bathsRegex, *summary)
		fields.Sqft = matchInt(sqftRegex, *summary)
	}

	fields.City = deriveCity(fields.Address, fields.CanonicalURL)
	return fields
}

// sectionDetails collects the grouped texts of every div carrying the
// given class: one group per section div, one text per descendant div.
func sectionDetails(doc *goquery.Document, class string) map[string][]string {
	var groups [][]string
	doc.Find("div."+class).Each(func(_ int, section *goquery.Selection) {
		groups = append(groups, divTexts(section))
	})
	return groupsToDetails(groups)
}

func calculatorDetails(doc *goquery.Document) map[string][]string {
	var groups [][]string
	doc.Find("#calculator-section .d-flex").Each(func(_ int, row *goquery.Selection) {
		groups = append(groups, divTexts(row))
	})
	return groupsToDetails(groups)
}

func descriptionText(doc *goquery.Document) *string {
	return textField(doc, "p.description")
}

// groupsToDetails folds grouped texts into a key/value map: the first
// text of each group is the key, the remaining texts are its values.
// Repeated keys overwrite earlier ones, and a lone key stays in the map
// with no values at all.
func groupsToDetails(groups [][]string) map[string][]string {
	details := make(map[string][]string)
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		details[group[0]] = group[1:]
	}
	return details
}

// detailValue flattens one detail entry into a record cell. Absent keys
// and value-less keys come back nil; several values are joined with "; ".
func detailValue(details map[string][]string, key string) *string {
	vals := details[key]
	if len(vals) == 0 {
		return nil
	}
	if len(vals) == 1 {
		return &vals[0]
	}
	joined := strings.Join(vals, "; ")
	return &joined
}

// deriveCity picks the city out of a comma-separated address, second
// part from the end. Addresses rebuilt from a URL slug carry no commas,
// so those fall back to the slug, where the city sits third from the end
// ("123-main-st-gainesville-ga-30501").
func deriveCity(address, canonical *string) *string {
	if address == nil {
		return nil
	}

	parts := strings.Split(*address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 2 {
		return &parts[len(parts)-2]
	}

	if canonical == nil {
		return nil
	}
	slugParts := strings.Split(lastSegment(*canonical), "-")
	if len(slugParts) >= 3 {
		city := strings.ToUpper(slugParts[len(slugParts)-3])
		return &city
	}
	city := strings.ToUpper(slugParts[0])
	return &city
}

// divTexts returns the trimmed text of every descendant div, in document order.
func divTexts(section *goquery.Selection) []string {
	var texts []string
	section.Find("div").Each(func(_ int, div *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(div.Text()))
	})
	return texts
}

// textField returns the trimmed text of the first selector match.
func textField(doc *goquery.Document, selector string) *string {
	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(node.Text())
	return &text
}

// attrField returns the trimmed attribute value of the first selector match.
func attrField(doc *goquery.Document, selector, attr string) *string {
	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return nil
	}
	val, ok := node.Attr(attr)
	if !ok {
		return nil
	}
	val = strings.TrimSpace(val)
	return &val
}

// matchInt returns the first capture group as an int, nil when the
// pattern does not match. Thousands separators are dropped.
func matchInt(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return nil
	}
	return &n
}

// containsFold reports whether text contains the substring, case
// insensitively. Nil text never contains anything.
func containsFold(text *string, substring string) bool {
	if text == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*text), strings.ToLower(substring))
}

func lastSegment(u string) string {
	return u[strings.LastIndex(u, "/")+1:]
}

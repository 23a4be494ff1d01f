package extractor

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/use-agent/gpd-enhance/models"
)

var (
	titleSel    = cascadia.MustCompile("title")
	h1Sel       = cascadia.MustCompile("h1")
	metaDescSel = cascadia.MustCompile(`meta[name="description"]`)
)

// ParseFields parses body as HTML and pulls out the page title, the first
// <h1> and the meta description. Missing fields are models.NotFound.
//
// The tree only lives for the duration of the call.
func ParseFields(body []byte) (models.ExtractedFields, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return models.ExtractedFields{}, err
	}
	doc := goquery.NewDocumentFromNode(root)

	return models.ExtractedFields{
		PageTitle:       firstText(doc, titleSel),
		FirstH1:         firstText(doc, h1Sel),
		MetaDescription: firstAttr(doc, metaDescSel, "content"),
	}, nil
}

func firstText(doc *goquery.Document, m goquery.Matcher) string {
	sel := doc.FindMatcher(m).First()
	if sel.Length() == 0 {
		return models.NotFound
	}
	return strings.TrimSpace(sel.Text())
}

func firstAttr(doc *goquery.Document, m goquery.Matcher, attr string) string {
	sel := doc.FindMatcher(m).First()
	v, ok := sel.Attr(attr)
	if !ok {
		return models.NotFound
	}
	return strings.TrimSpace(v)
}

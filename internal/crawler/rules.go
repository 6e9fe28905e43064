package crawler

import (
	"fmt"
	"net/url"
	"ulascansenturk/kayak-pipeline/internal/extract"
	"ulascansenturk/kayak-pipeline/internal/models"
)

const DefaultListingURLTemplate = "https://www.booking.com/city/fr/%s.fr.html"

// Rules are the selectors for both crawl stages. Detail must contain a "name"
// rule; the other keys map onto the optional HotelRecord fields.
type Rules struct {
	Listing    extract.Rule
	Detail     map[string]extract.Rule
	SubRatings extract.PairRule
}

func DefaultRules() Rules {
	return Rules{
		Listing: extract.Rule{Selector: "div.c6666c448e > a", Attr: "href"},
		Detail: map[string]extract.Rule{
			"name":        {Selector: "h2.d2fee87262.pp-header__title"},
			"rating":      {Selector: "p.review_score_value"},
			"description": {Selector: `p[data-testid="property-description"]`},
			"reviews":     {Selector: "a.big_review_score_detailed div.abf093bdfe"},
			"coordinates": {Selector: "a#hotel_sidebar_static_map", Attr: "data-atlas-latlng"},
		},
		SubRatings: extract.PairRule{
			Container: `div[data-testid="review-subscore"]`,
			Label:     extract.Rule{Selector: "span.be887614c2"},
			Value:     extract.Rule{Selector: "div.ccb65902b2.efcd70b4c4"},
		},
	}
}

func ListingURL(template string, city models.City) string {
	return fmt.Sprintf(template, url.PathEscape(city.Slug()))
}

// resolveLink makes href absolute against the page it was found on.
func resolveLink(pageURL, href string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

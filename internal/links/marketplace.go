// Package links builds marketplace search URLs for catalog products.
package links

import (
	"net/url"
	"strings"

	"pcsense/buylinks/internal/domain"
)

// Marketplace is a store whose search page accepts the query as the final
// part of the URL.
type Marketplace struct {
	Name       string
	BaseURL    string
	SearchPath string
}

// Amazon is the default buy link target.
var Amazon = Marketplace{Name: "amazon", BaseURL: "https://www.amazon.in", SearchPath: "/s?k="}

// Stores are the retailers used for shopLinks, in output order.
var Stores = []Marketplace{
	Amazon,
	{Name: "flipkart", BaseURL: "https://www.flipkart.com", SearchPath: "/search?q="},
	{Name: "reliance", BaseURL: "https://www.reliancedigital.in", SearchPath: "/search?q="},
	{Name: "croma", BaseURL: "https://www.croma.com", SearchPath: "/search?q="},
	{Name: "vijay", BaseURL: "https://www.vijayssales.com", SearchPath: "/search?q="},
	{Name: "mdcomputers", BaseURL: "https://mdcomputers.in", SearchPath: "/index.php?route=product/search&search="},
}

var slashReplacer = strings.NewReplacer(" / ", " ")

// SearchTerm turns a product name into search text: slash separators become
// spaces and the category label, if any, is appended.
func SearchTerm(name, label string) string {
	term := slashReplacer.Replace(name)
	term = strings.ReplaceAll(term, "/", " ")
	if label != "" {
		term = term + " " + label
	}
	return term
}

// Link returns the search URL for the product on this marketplace.
func (m Marketplace) Link(name, label string) string {
	return m.BaseURL + m.SearchPath + url.QueryEscape(SearchTerm(name, label))
}

// ShopLinks returns one search link per store, keyed by store name.
func ShopLinks(name, label string) (*domain.Object, error) {
	links := &domain.Object{}
	for _, store := range Stores {
		if err := links.Set(store.Name, store.Link(name, label)); err != nil {
			return nil, err
		}
	}
	return links, nil
}

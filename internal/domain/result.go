package domain

// AddedLink describes one buy link written during a run.
type AddedLink struct {
	Category CategoryKey `json:"category"`
	Name     string      `json:"name"`
	Link     string      `json:"link"`
}

type CategoryResult struct {
	Key   CategoryKey `json:"key"`
	Label string      `json:"label"`
	Added int         `json:"added"`
	Total int         `json:"total"`
}

// EnrichmentResult summarizes a single enrichment pass.
type EnrichmentResult struct {
	Added          int              `json:"added"`            // Buy links written
	Total          int              `json:"total"`            // Records seen in table categories
	ShopLinksAdded int              `json:"shop_links_added"` // Records given a shopLinks object
	Categories     []CategoryResult `json:"categories"`       // Present categories, table order
	Links          []AddedLink      `json:"links"`            // Every added buy link, pass order
}

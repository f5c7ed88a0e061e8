package domain

const (
	FieldName      = "name"
	FieldBuyLink   = "buyLink"
	FieldShopLinks = "shopLinks"
)

// Record is a single component entry. Only a handful of its fields are
// understood, everything else is carried through untouched.
type Record struct {
	Object
}

func (r *Record) Name() (string, error) {
	return r.GetString(FieldName)
}

// NeedsBuyLink reports whether the record lacks a usable buy link.
func (r *Record) NeedsBuyLink() bool {
	return !r.Truthy(FieldBuyLink)
}

func (r *Record) SetBuyLink(link string) error {
	return r.Set(FieldBuyLink, link)
}

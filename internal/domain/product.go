package domain

// Product is a catalog entry. Price is in whole currency units. VendorID is
// empty for products the shop sells itself.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Category    string
	ImageURL    string
	VendorID    string
	IsActive    bool
}

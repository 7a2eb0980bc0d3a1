package domain

type Session struct {
	UserID string
	Email  string
}

type PromoCode struct {
	Code               string
	DiscountPercentage int
	Active             bool
}

const (
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
)

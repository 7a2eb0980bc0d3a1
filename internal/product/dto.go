package product

type SearchProductsRequest struct {
	ProductIDs []string `json:"productIds"`
}

type SearchProductsResponse struct {
	Products []ProductDTO `json:"products"`
	NotFound []string     `json:"notFound"`
}

type ListProductsResponse struct {
	Products []ProductDTO `json:"products"`
}

type ProductDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Price          int64  `json:"price"`
	FormattedPrice string `json:"formattedPrice"`
	Category       string `json:"category"`
	ImageURL       string `json:"imageUrl,omitempty"`
}

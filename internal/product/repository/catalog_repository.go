package repository

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"storefront/internal/domain"
)

type catalogFile struct {
	Products []catalogEntry `yaml:"products"`
}

type catalogEntry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       int64  `yaml:"price"`
	Category    string `yaml:"category"`
	ImageURL    string `yaml:"image_url"`
	VendorID    string `yaml:"vendor_id"`
	Active      *bool  `yaml:"active"`
}

// YAMLRepository serves the product catalog from a static file loaded once.
type YAMLRepository struct {
	byID  map[string]domain.Product
	order []string
}

func LoadYAMLRepository(path string) (*YAMLRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return ParseYAMLRepository(data)
}

func ParseYAMLRepository(data []byte) (*YAMLRepository, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	repo := &YAMLRepository{byID: make(map[string]domain.Product, len(file.Products))}
	for i, e := range file.Products {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
		if _, dup := repo.byID[id]; dup {
			return nil, fmt.Errorf("catalog entry %q is duplicated", id)
		}
		if e.Price <= 0 {
			return nil, fmt.Errorf("catalog entry %q must have a positive price", id)
		}

		active := true
		if e.Active != nil {
			active = *e.Active
		}
		repo.byID[id] = domain.Product{
			ID:          id,
			Name:        e.Name,
			Description: e.Description,
			Price:       e.Price,
			Category:    e.Category,
			ImageURL:    e.ImageURL,
			VendorID:    strings.TrimSpace(e.VendorID),
			IsActive:    active,
		}
		repo.order = append(repo.order, id)
	}

	return repo, nil
}

// FindByIDs returns active products in the order of ids; unknown ids are skipped.
func (r *YAMLRepository) FindByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var products []domain.Product
	for _, id := range ids {
		if p, ok := r.byID[id]; ok && p.IsActive {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *YAMLRepository) ListActive(_ context.Context, category string) ([]domain.Product, error) {
	products := []domain.Product{}
	for _, id := range r.order {
		p := r.byID[id]
		if !p.IsActive {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		products = append(products, p)
	}
	sort.SliceStable(products, func(i, j int) bool { return products[i].Category < products[j].Category })
	return products, nil
}

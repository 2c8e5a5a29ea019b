package navigation

import (
	"strings"

	"almagro.dev/catalog-admin/internal/admin/rbac"
)

// MenuItem is one sidebar entry.
type MenuItem struct {
	Key         string
	Label       string
	Icon        string
	Capability  rbac.Capability
	Href        string
	Pattern     string
	MatchPrefix bool
}

// MenuGroup clusters related sidebar entries under a heading.
type MenuGroup struct {
	Key        string
	Label      string
	Capability rbac.Capability
	Items      []MenuItem
}

// BuildMenu assembles the console's sidebar for the given base path.
func BuildMenu(basePath string) []MenuGroup {
	join := func(p string) string {
		base := strings.TrimRight(basePath, "/")
		if base == "" {
			return p
		}
		return base + p
	}

	return []MenuGroup{
		{
			Key:        "catalogo",
			Label:      "Catálogo",
			Capability: rbac.CapProductsList,
			Items: []MenuItem{
				{
					Key:         "products",
					Label:       "Productos",
					Icon:        "box",
					Capability:  rbac.CapProductsList,
					Href:        join("/products"),
					Pattern:     join("/products"),
					MatchPrefix: true,
				},
				{
					Key:        "product-new",
					Label:      "Nuevo producto",
					Icon:       "plus",
					Capability: rbac.CapProductsWrite,
					Href:       join("/products/new"),
					Pattern:    join("/products/new"),
				},
			},
		},
		{
			Key:        "mercado",
			Label:      "MercadoLibre",
			Capability: rbac.CapMeliView,
			Items: []MenuItem{
				{
					Key:         "meli",
					Label:       "Publicaciones",
					Icon:        "storefront",
					Capability:  rbac.CapMeliView,
					Href:        join("/meli"),
					Pattern:     join("/meli"),
					MatchPrefix: true,
				},
			},
		},
		{
			Key:        "cuenta",
			Label:      "Cuenta",
			Capability: rbac.CapProfileSelf,
			Items: []MenuItem{
				{
					Key:         "settings",
					Label:       "Configuración",
					Icon:        "gear",
					Capability:  rbac.CapProfileSelf,
					Href:        join("/settings"),
					Pattern:     join("/settings"),
					MatchPrefix: true,
				},
			},
		},
	}
}

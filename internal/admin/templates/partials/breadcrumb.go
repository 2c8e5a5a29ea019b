package partials

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Breadcrumb is one trail entry; an empty Href renders plain text.
type Breadcrumb struct {
	Label string
	Href  string
}

// Breadcrumbs renders the page trail.
func Breadcrumbs(items []Breadcrumb) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if len(items) == 0 {
			return nil
		}
		if _, err := io.WriteString(w, `<nav aria-label="Ruta de navegación" class="text-sm text-slate-500"><ol class="flex items-center gap-1">`); err != nil {
			return err
		}
		for i, item := range items {
			if i > 0 {
				if _, err := io.WriteString(w, `<li aria-hidden="true">/</li>`); err != nil {
					return err
				}
			}
			if item.Href != "" && i < len(items)-1 {
				if _, err := fmt.Fprintf(w, `<li><a href="%s" class="hover:text-slate-700">%s</a></li>`, esc(item.Href), esc(item.Label)); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, `<li class="font-medium text-slate-700">%s</li>`, esc(item.Label)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</ol></nav>`)
		return err
	})
}

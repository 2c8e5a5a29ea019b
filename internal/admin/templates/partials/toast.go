package partials

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"almagro.dev/catalog-admin/internal/admin/templates/helpers"
)

// ToastMessage renders a single notification for the toast region. Tone is
// one of success, warning or danger.
func ToastMessage(tone, message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="%s shadow" role="status" data-toast="%s">%s</div>`,
			helpers.BadgeClass(tone), esc(tone), esc(message),
		)
		return err
	})
}

// Toast targets the toast region via an out-of-band swap so fragment
// responses can surface a notification without touching their hx-target.
func Toast(tone, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div id="toast-region" hx-swap-oob="beforeend">`); err != nil {
			return err
		}
		if err := ToastMessage(tone, message).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

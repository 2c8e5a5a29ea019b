package helpers

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// Currency formats an amount in Argentine peso style: "$ 12.345",
// dot-grouped thousands, no decimals.
func Currency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	whole := strconv.FormatInt(int64(math.Round(amount)), 10)

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(whole[i : i+3])
	}
	return sign + "$ " + b.String()
}

// Date formats the timestamp in the provided layout (defaults to 2006-01-02 15:04).
func Date(ts time.Time, layout string) string {
	if layout == "" {
		layout = "2006-01-02 15:04"
	}
	return ts.In(time.Local).Format(layout)
}

var categoryPalette = [8]string{
	"bg-sky-100 text-sky-700",
	"bg-emerald-100 text-emerald-700",
	"bg-amber-100 text-amber-700",
	"bg-rose-100 text-rose-700",
	"bg-violet-100 text-violet-700",
	"bg-teal-100 text-teal-700",
	"bg-orange-100 text-orange-700",
	"bg-slate-100 text-slate-700",
}

// CategoryColor derives a stable chip colour from the category text so the
// same label always renders in the same swatch.
func CategoryColor(category string) string {
	idx := categoryHash(category) % int32(len(categoryPalette))
	if idx < 0 {
		idx = -idx
	}
	return categoryPalette[idx]
}

// categoryHash mirrors the classic 31-bit string hash with signed 32-bit
// wraparound: h = c + (h<<5) - h per character.
func categoryHash(s string) int32 {
	var h int32
	for _, r := range s {
		h = int32(r) + (h << 5) - h
	}
	if h == math.MinInt32 {
		return 0
	}
	if h < 0 {
		return -h
	}
	return h
}

// NavClass returns sidebar link classes.
func NavClass(active bool) string {
	if active {
		return "flex items-center gap-2 rounded-md bg-slate-900 px-3 py-2 text-sm font-medium text-white shadow-sm"
	}
	return "flex items-center gap-2 rounded-md px-3 py-2 text-sm font-medium text-slate-600 hover:bg-slate-100 hover:text-slate-900"
}

// BadgeClass maps semantic tones to utility classes.
func BadgeClass(tone string) string {
	switch tone {
	case "success":
		return "inline-flex items-center rounded-full bg-emerald-100 px-2 py-1 text-xs font-medium text-emerald-700"
	case "warning":
		return "inline-flex items-center rounded-full bg-amber-100 px-2 py-1 text-xs font-medium text-amber-700"
	case "danger":
		return "inline-flex items-center rounded-full bg-rose-100 px-2 py-1 text-xs font-medium text-rose-700"
	default:
		return "inline-flex items-center rounded-full bg-slate-100 px-2 py-1 text-xs font-medium text-slate-700"
	}
}

// StatusTone maps a marketplace status to a badge tone.
func StatusTone(status string) string {
	switch status {
	case "active":
		return "success"
	case "paused", "under_review":
		return "warning"
	case "closed":
		return "danger"
	default:
		return ""
	}
}

// SetRawQuery returns rawQuery with key set to value.
func SetRawQuery(rawQuery, key, value string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		values = url.Values{}
	}
	values.Set(key, value)
	return values.Encode()
}

// DelRawQuery returns rawQuery with key removed.
func DelRawQuery(rawQuery, key string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return rawQuery
	}
	values.Del(key)
	return values.Encode()
}

// BuildURL joins a path with a raw query, replacing any query the path
// already carries and dropping the separator when the query is empty.
func BuildURL(path, rawQuery string) string {
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		path = path[:idx]
	}
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}

// TextComponent returns a templ component that renders plain text.
func TextComponent(value string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(value))
		return err
	})
}

// I18N is a placeholder translation helper.
func I18N(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	return fmt.Sprintf(key, args...)
}

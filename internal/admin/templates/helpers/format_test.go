package helpers

import (
	"net/url"
	"testing"
)

func TestCurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$ 0"},
		{5, "$ 5"},
		{1234, "$ 1.234"},
		{1234567.4, "$ 1.234.567"},
		{-980, "-$ 980"},
		{999.6, "$ 1.000"},
	}
	for _, tc := range tests {
		if got := Currency(tc.amount); got != tc.want {
			t.Errorf("Currency(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestCategoryColorDeterministic(t *testing.T) {
	t.Parallel()

	for _, category := range []string{"", "Electrónica", "Hogar > Cocina", "repuestos"} {
		first := CategoryColor(category)
		for i := 0; i < 5; i++ {
			if got := CategoryColor(category); got != first {
				t.Fatalf("CategoryColor(%q) not stable: %q then %q", category, first, got)
			}
		}
		found := false
		for _, class := range categoryPalette {
			if class == first {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("CategoryColor(%q) = %q not in palette", category, first)
		}
	}
}

func TestCategoryHashMatchesCharwiseFormula(t *testing.T) {
	t.Parallel()

	// h = c + (h<<5) - h with signed 32-bit wraparound.
	var want int32
	for _, r := range "Electrónica" {
		want = int32(r) + (want << 5) - want
	}
	if want < 0 {
		want = -want
	}
	if got := categoryHash("Electrónica"); got != want {
		t.Errorf("categoryHash = %d, want %d", got, want)
	}
}

func TestSetRawQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rawQuery string
		key      string
		value    string
		want     map[string]string
	}{
		{
			name:     "updates existing key",
			rawQuery: "category=repuestos&page=2",
			key:      "page",
			value:    "3",
			want: map[string]string{
				"category": "repuestos",
				"page":     "3",
			},
		},
		{
			name:     "adds new key when missing",
			rawQuery: "category=repuestos",
			key:      "page",
			value:    "1",
			want: map[string]string{
				"category": "repuestos",
				"page":     "1",
			},
		},
		{
			name:     "handles empty input",
			rawQuery: "",
			key:      "page",
			value:    "1",
			want: map[string]string{
				"page": "1",
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := SetRawQuery(tc.rawQuery, tc.key, tc.value)
			values, err := url.ParseQuery(got)
			if err != nil {
				t.Fatalf("ParseQuery returned error: %v", err)
			}
			for k, expected := range tc.want {
				if got := values.Get(k); got != expected {
					t.Errorf("expected %s=%s, got %s", k, expected, got)
				}
			}
		})
	}
}

func TestDelRawQuery(t *testing.T) {
	t.Parallel()

	raw := "category=repuestos&page=2"
	got := DelRawQuery(raw, "page")
	values, err := url.ParseQuery(got)
	if err != nil {
		t.Fatalf("ParseQuery returned error: %v", err)
	}
	if values.Get("page") != "" {
		t.Errorf("expected page param removed, got %q", values.Get("page"))
	}
	if values.Get("category") != "repuestos" {
		t.Errorf("expected category preserved, got %q", values.Get("category"))
	}
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	u := BuildURL("/admin/products", "page=2&sort=price")
	if u != "/admin/products?page=2&sort=price" {
		t.Errorf("unexpected URL: %s", u)
	}

	// handles empty raw query without trailing question mark
	u = BuildURL("/admin/products?page=1", "")
	if u != "/admin/products" {
		t.Errorf("expected query stripped when empty, got %s", u)
	}
}

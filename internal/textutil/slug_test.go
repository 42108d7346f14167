package textutil_test

import (
	"testing"

	"sitevault/internal/textutil"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Harbor North", "harbor-north"},
		{"accents", "Gare du Château-d'Eau", "gare-du-chateau-d-eau"},
		{"umlauts", "Über-Depot 12", "uber-depot-12"},
		{"punctuation runs", "Pier #4 -- West!", "pier-4-west"},
		{"leading trailing", "  (Old) Depot  ", "old-depot"},
		{"digits", "Site 42B", "site-42b"},
		{"only symbols", "!!!", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.Slug(tc.in); got != tc.want {
				t.Fatalf("Slug(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSlugOr(t *testing.T) {
	if got := textutil.SlugOr("???", "fallback"); got != "fallback" {
		t.Fatalf("SlugOr = %q, want fallback", got)
	}
	if got := textutil.SlugOr("Real Name", "fallback"); got != "real-name" {
		t.Fatalf("SlugOr = %q, want real-name", got)
	}
}

package gallery

import "testing"

func TestRemoveDiacritics(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Gül", "Gul"},
		{"Özgür", "Ozgur"},
		{"Şeyma", "Seyma"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := RemoveDiacritics(tc.in); got != tc.want {
			t.Errorf("RemoveDiacritics(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Ayşe Yılmaz", "ayse yilmaz"},
		{"mehmet-can  Demir", "mehmet can demir"},
		{"  IŞIL ", "isil"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "judgment.pdf", want: "judgment.pdf"},
		{in: "  spaced.pdf  ", want: "spaced.pdf"},
		{in: "dir/inside.pdf", want: "dir_inside.pdf"},
		{in: `dir\inside.pdf`, want: "dir_inside.pdf"},
		{in: "../etc/passwd", wantErr: true},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tc := range cases {
		got, err := SanitizeFileName(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("SanitizeFileName(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("SanitizeFileName(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHashCaseKeyStable(t *testing.T) {
	a := HashCaseKey("case-1")
	b := HashCaseKey("case-1")
	if a != b {
		t.Fatalf("expected stable hash, got %q and %q", a, b)
	}
	if a == HashCaseKey("case-2") {
		t.Fatalf("expected distinct hashes for distinct cases")
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha256, got %q", a)
	}
}

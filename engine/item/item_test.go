package item

import "testing"

func TestDomain(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.example.com/path/page", "example.com"},
		{"http://example.com", "example.com"},
		{"https://sub.example.org/a?b=c", "sub.example.org"},
		{"example.net/page", "example.net"},
		{"", "Unknown Source"},
		{"https:///", "Unknown Source"},
	}
	for _, tc := range cases {
		if got := Domain(tc.url); got != tc.want {
			t.Fatalf("Domain(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestValid(t *testing.T) {
	if !(Record{Title: "t", URL: "u"}).Valid() {
		t.Fatal("record with title and url should be valid")
	}
	if (Record{Title: "t"}).Valid() || (Record{URL: "u"}).Valid() {
		t.Fatal("missing title or url should be invalid")
	}
}

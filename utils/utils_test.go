package utils

import (
	"net/http/httptest"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID(12)
	if len(id) != 12 {
		t.Errorf("length = %d, want 12", len(id))
	}
	if GenerateID(12) == id {
		t.Errorf("two generated ids collided")
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		url       string
		wantSkip  int64
		wantLimit int64
	}{
		{"/api/items", 0, 20},
		{"/api/items?page=3&limit=10", 20, 10},
		{"/api/items?page=0&limit=-5", 0, 20},
		{"/api/items?limit=9999", 0, 100},
		{"/api/items?page=abc&limit=abc", 0, 20},
	}

	for _, tc := range tests {
		r := httptest.NewRequest("GET", tc.url, nil)
		skip, limit := ParsePagination(r, 20, 100)
		if skip != tc.wantSkip || limit != tc.wantLimit {
			t.Errorf("%s: got (%d, %d), want (%d, %d)", tc.url, skip, limit, tc.wantSkip, tc.wantLimit)
		}
	}
}

func TestSplitTags(t *testing.T) {
	got := SplitTags("Power, drill , ,DRILL,cordless")
	want := []string{"power", "drill", "cordless"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := SplitTags(""); len(got) != 0 {
		t.Errorf("empty input should yield no tags, got %v", got)
	}
}

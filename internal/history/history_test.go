package history

import (
	"testing"
	"time"
)

func TestTouchForgetAndLastUsed(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := Touch("api"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	got, err := LastUsed()
	if err != nil {
		t.Fatalf("last used: %v", err)
	}
	if got["api"] <= 0 {
		t.Fatalf("expected timestamp for api, got %+v", got)
	}

	if err := Forget("api"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	got, err = LastUsed()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got["api"]; ok {
		t.Fatalf("expected api to be forgotten, got %+v", got)
	}
	if err := Forget("never-used"); err != nil {
		t.Fatalf("forget unknown: %v", err)
	}
}

func TestSortRecent(t *testing.T) {
	now := time.Now().Unix()
	sorted := SortRecent([]string{"db", "api", "cache", "web"}, map[string]int64{
		"api": now,
		"db":  now - 60,
	})
	want := []string{"api", "db", "cache", "web"}
	for i := range want {
		if sorted[i] != want[i] {
			t.Fatalf("want %v, got %v", want, sorted)
		}
	}
}

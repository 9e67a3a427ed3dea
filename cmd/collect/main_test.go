package main

import (
	"testing"

	"github.com/LJTian/NewsPusher/internal/config"
)

func TestPick(t *testing.T) {
	all := []config.Source{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	got, err := pick(all, nil)
	if err != nil || len(got) != 3 {
		t.Fatalf("pick all = %v, %v", got, err)
	}

	got, err = pick(all, []string{"c", "a"})
	if err != nil || len(got) != 2 || got[0].Name != "c" || got[1].Name != "a" {
		t.Fatalf("pick subset = %v, %v", got, err)
	}

	if _, err := pick(all, []string{"missing"}); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

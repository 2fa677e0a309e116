package web

import (
	"bytes"
	"testing"
)

func TestPageCache(t *testing.T) {
	c := NewPageCache()

	if _, ok := c.Get("/"); ok {
		t.Fatal("empty cache should miss")
	}

	c.Set("/", []byte("home"))
	c.Set("/posts", []byte("listing"))

	body, ok := c.Get("/")
	if !ok || !bytes.Equal(body, []byte("home")) {
		t.Errorf("Get(/) = %q, %v", body, ok)
	}

	c.Invalidate("/", "/dashboard")
	if _, ok := c.Get("/"); ok {
		t.Error("invalidated path should miss")
	}
	if _, ok := c.Get("/posts"); !ok {
		t.Error("untouched path should still hit")
	}
}

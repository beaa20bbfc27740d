// Package cachetest provides a shared behavior suite for cache.Cache
// implementations.
package cachetest

import (
	"context"
	"testing"
	"time"

	"github.com/Strob0t/TaskRelay/internal/port/cache"
)

// Run exercises the standard cache contract against c.
func Run(t *testing.T, c cache.Cache) {
	t.Helper()
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, "contact.KUA1", []byte("Ada Lovelace"), time.Minute); err != nil {
			t.Fatal(err)
		}
		val, found, err := c.Get(ctx, "contact.KUA1")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after Set")
		}
		if string(val) != "Ada Lovelace" {
			t.Fatalf("expected Ada Lovelace, got %s", val)
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		_, found, err := c.Get(ctx, "contact.NOPE")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss for nonexistent key")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = c.Set(ctx, "contact.DEL", []byte("x"), time.Minute)
		if err := c.Delete(ctx, "contact.DEL"); err != nil {
			t.Fatal(err)
		}
		_, found, err := c.Get(ctx, "contact.DEL")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss after Delete")
		}
	})

	t.Run("DeleteNonexistent", func(t *testing.T) {
		if err := c.Delete(ctx, "contact.NEVER"); err != nil {
			t.Fatal("Delete of nonexistent key should not error")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = c.Set(ctx, "contact.OW", []byte("v1"), time.Minute)
		_ = c.Set(ctx, "contact.OW", []byte("v2"), time.Minute)
		val, found, err := c.Get(ctx, "contact.OW")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after overwrite")
		}
		if string(val) != "v2" {
			t.Fatalf("expected v2 after overwrite, got %s", val)
		}
	})
}

// Package secrets provides a thread-safe bearer-token vault with hot reload.
package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
)

// Keys of the tokens held by the relay.
const (
	KeyWrikeToken = "WRIKE_TOKEN"
	KeyWebexToken = "WEBEX_TOKEN"
)

// minRedactLen is the shortest secret RedactString will search for.
const minRedactLen = 4

// Loader retrieves secrets from a source (env vars, file, remote vault, etc.).
type Loader func() (map[string]string, error)

// Vault holds secret values in memory and supports atomic reloading.
type Vault struct {
	mu     sync.RWMutex
	values map[string]string
	loader Loader
}

// NewVault creates a Vault, calling the loader once to populate initial values.
func NewVault(loader Loader) (*Vault, error) {
	vals, err := loader()
	if err != nil {
		return nil, fmt.Errorf("initial secret load: %w", err)
	}
	return &Vault{
		values: vals,
		loader: loader,
	}, nil
}

// Get returns the secret for key, or an empty string if not found.
func (v *Vault) Get(key string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.values[key]
}

// Source returns a getter bound to key, suitable for API clients that
// read their token on every request.
func (v *Vault) Source(key string) func() string {
	return func() string { return v.Get(key) }
}

// Keys returns the names of all loaded secrets in sorted order.
func (v *Vault) Keys() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Redacted returns a masked rendition of the secret for logs.
func (v *Vault) Redacted(key string) string {
	return mask(v.Get(key))
}

// RedactString replaces every loaded secret found in s with its mask.
func (v *Vault) RedactString(s string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, val := range v.values {
		if len(val) < minRedactLen {
			continue
		}
		s = strings.ReplaceAll(s, val, mask(val))
	}
	return s
}

func mask(val string) string {
	switch {
	case val == "":
		return ""
	case len(val) <= minRedactLen:
		return "****"
	default:
		return val[:2] + "****"
	}
}

// Reload calls the loader and swaps in the new values atomically.
// If the loader returns an error, existing values are preserved.
func (v *Vault) Reload() error {
	newVals, err := v.loader()
	if err != nil {
		return fmt.Errorf("reload secrets: %w", err)
	}
	v.mu.Lock()
	v.values = newVals
	v.mu.Unlock()
	return nil
}

// ReloadOnSignal reloads the vault whenever the process receives SIGHUP,
// until ctx is done.
func (v *Vault) ReloadOnSignal(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				if err := v.Reload(); err != nil {
					slog.Error("secret reload failed", "error", err)
					continue
				}
				slog.Info("secrets reloaded", "keys", v.Keys())
			}
		}
	}()
}

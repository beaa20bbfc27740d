package secrets

import "os"

// EnvLoader returns a Loader that reads the specified environment variables.
// Missing variables are silently omitted from the result map.
func EnvLoader(keys ...string) Loader {
	return func() (map[string]string, error) {
		vals := make(map[string]string, len(keys))
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				vals[k] = v
			}
		}
		return vals, nil
	}
}

// WithFallback wraps loader so keys it leaves empty take the value from
// fallback. Config-file tokens act as the fallback for the environment.
func WithFallback(loader Loader, fallback map[string]string) Loader {
	return func() (map[string]string, error) {
		vals, err := loader()
		if err != nil {
			return nil, err
		}
		if vals == nil {
			vals = make(map[string]string, len(fallback))
		}
		for k, v := range fallback {
			if vals[k] == "" && v != "" {
				vals[k] = v
			}
		}
		return vals, nil
	}
}

package runner

import (
	"fmt"
	"time"

	v1 "github.com/zipmill/zipmill/apis/v1"
	"github.com/zipmill/zipmill/internal/sources"
)

// buildEntrySource constructs the content source a manifest entry names.
// Exactly one source field must be set.
func buildEntrySource(entry v1.Entry) (sources.Source, error) {
	switch {
	case entry.File != nil && entry.HTTP != nil:
		return nil, fmt.Errorf("entry %q has more than one source", entry.Name)
	case entry.File != nil:
		return sources.NewOsFileSource(entry.File.Path), nil
	case entry.HTTP != nil:
		cfg := sources.HTTPConfig{
			URL:      entry.HTTP.URL,
			Headers:  entry.HTTP.Headers,
			Insecure: entry.HTTP.Insecure,
		}
		if entry.HTTP.Timeout != nil {
			cfg.Timeout = time.Duration(*entry.HTTP.Timeout) * time.Second
		}
		source, err := sources.NewHTTPSource(cfg)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry.Name, err)
		}
		return source, nil
	default:
		return nil, fmt.Errorf("entry %q has no source specified", entry.Name)
	}
}

package planlog

import "fmt"

// Options selects and configures a Store backend.
type Options struct {
	Backend    string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Open creates the store described by opts. A JSONL backend with a positive
// MaxSizeMB rotates its file.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", "jsonl":
		if opts.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(opts.Path, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays)
		}
		return NewJSONLStore(opts.Path)
	case "sqlite":
		return NewSQLiteStore(opts.Path)
	case "none":
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown plan log backend %q", opts.Backend)
	}
}

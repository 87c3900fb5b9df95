package datasource

import (
	"fmt"
)

// OpenDiscovered discovers candidate databases, selects one and opens it.
// A missing database is created; an existing file that is not a history
// database is rejected rather than overwritten.
func OpenDiscovered(discovery DiscoveryOptions, opts Options) (*Store, DataSource, error) {
	sources := DiscoverSources(discovery)
	if len(sources) == 0 {
		return nil, DataSource{}, fmt.Errorf("%w: no candidate paths", ErrInvalidSource)
	}

	best, err := SelectSource(sources)
	if err != nil {
		return nil, DataSource{}, err
	}

	if !best.Exists && opts.ReadOnly {
		return nil, best, fmt.Errorf("%w: %s does not exist", ErrInvalidSource, best.Path)
	}

	store, err := Open(best.Path, opts)
	if err != nil {
		return nil, best, fmt.Errorf("failed to open history database %s: %w", best.Path, err)
	}
	return store, best, nil
}

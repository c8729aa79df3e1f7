//go:build !cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/capform/internal/index"
)

// openStore opens the capability index backend. Without cgo the KuzuDB driver
// is unavailable, so the index lives in memory and cannot be persisted.
func openStore(indexPath string) (index.Store, error) {
	if indexPath != "" {
		return nil, fmt.Errorf("-index requires a cgo build (KuzuDB backend)")
	}
	return index.NewMemStore(), nil
}

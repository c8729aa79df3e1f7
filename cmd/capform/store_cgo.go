//go:build cgo

package main

import "github.com/dusk-indust/capform/internal/index"

// openStore opens the capability index backend. With cgo available the index
// lives in KuzuDB: file-backed when indexPath is set, in-memory otherwise.
func openStore(indexPath string) (index.Store, error) {
	if indexPath != "" {
		return index.NewKuzuFileStore(indexPath)
	}
	return index.NewKuzuStore()
}

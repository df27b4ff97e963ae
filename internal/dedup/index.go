// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

// Package dedup indexes installed plugin files by content hash.
package dedup

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/zeebo/blake3"
)

// Hash is a BLAKE3-256 content digest.
type Hash [32]byte

// Sum hashes data.
func Sum(data []byte) Hash {
	return blake3.Sum256(data)
}

// String returns the hex encoding of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Index maps content hashes to the file currently holding that content.
// It is not safe for concurrent use.
type Index struct {
	entries map[Hash]string
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: make(map[Hash]string)}
}

// Build hashes every regular file directly inside dir. Subdirectories and
// other non-regular entries are skipped. Entries are visited in file name
// order, so when two files share content the lexically last one wins.
func Build(dir string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, oops.Code("IO_SCAN_FAILED").With("path", dir).Wrapf(err, "scan plugins directory")
	}

	idx := New()
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		p := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(p) //nolint:gosec // p is constructed from ReadDir entries
		if err != nil {
			return nil, oops.Code("IO_READ_FAILED").With("path", p).Wrapf(err, "read existing plugin")
		}
		idx.Insert(Sum(data), p)
	}
	return idx, nil
}

// Lookup returns the path holding content with hash h.
func (i *Index) Lookup(h Hash) (string, bool) {
	p, ok := i.entries[h]
	return p, ok
}

// Insert records that path holds content with hash h, replacing any
// previous path for h.
func (i *Index) Insert(h Hash, path string) {
	i.entries[h] = path
}

// Len returns the number of distinct hashes in the index.
func (i *Index) Len() int {
	return len(i.entries)
}

package buildctx

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// TreeHash returns the git tree hash of the directory at path, as a hex
// string. Empty subdirectories are skipped, like git does.
func TreeHash(path string) (string, error) {
	h, _, err := treeHash(path)
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

// treeHash returns the hash of the tree at path and the number of entries it
// holds.
func treeHash(path string) (plumbing.Hash, int, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return plumbing.ZeroHash, 0, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	entries := make([]object.TreeEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		full := filepath.Join(path, de.Name())
		info, err := os.Lstat(full)
		if err != nil {
			return plumbing.ZeroHash, 0, fmt.Errorf("failed to stat %s: %w", full, err)
		}

		var entry object.TreeEntry
		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(full)
			if err != nil {
				return plumbing.ZeroHash, 0, fmt.Errorf("failed to read link %s: %w", full, err)
			}
			entry = object.TreeEntry{Mode: filemode.Symlink, Hash: plumbing.ComputeHash(plumbing.BlobObject, []byte(target))}
		case info.IsDir():
			sub, n, err := treeHash(full)
			if err != nil {
				return plumbing.ZeroHash, 0, err
			}
			if n == 0 {
				continue
			}
			entry = object.TreeEntry{Mode: filemode.Dir, Hash: sub}
		case info.Mode().IsRegular():
			content, err := os.ReadFile(full)
			if err != nil {
				return plumbing.ZeroHash, 0, fmt.Errorf("failed to read %s: %w", full, err)
			}
			mode := filemode.Regular
			if info.Mode().Perm()&0o100 != 0 {
				mode = filemode.Executable
			}
			entry = object.TreeEntry{Mode: mode, Hash: plumbing.ComputeHash(plumbing.BlobObject, content)}
		default:
			// Sockets, devices and pipes have no git representation.
			continue
		}
		entry.Name = de.Name()
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return gitSortKey(entries[i]) < gitSortKey(entries[j])
	})

	obj := &plumbing.MemoryObject{}
	tree := &object.Tree{Entries: entries}
	if err := tree.Encode(obj); err != nil {
		return plumbing.ZeroHash, 0, fmt.Errorf("failed to encode tree %s: %w", path, err)
	}
	return obj.Hash(), len(entries), nil
}

// gitSortKey orders tree entries the way git does: directories sort as if
// their name had a trailing slash.
func gitSortKey(e object.TreeEntry) string {
	if e.Mode == filemode.Dir {
		return e.Name + "/"
	}
	return e.Name
}

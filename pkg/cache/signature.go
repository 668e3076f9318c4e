package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// statPath is the default stat function used by the Manager
func statPath(path string) (time.Time, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, 0, err
	}
	return info.ModTime(), info.Size(), nil
}

// DirSignature computes an aggregate modification signature for a
// directory: a hash over every regular file's relative path, size, and
// modification time, in sorted path order. Any file change, addition, or
// removal changes the signature, so it is a sound key for whole-skill
// result memoization.
func DirSignature(dir string) (string, error) {
	type fileStat struct {
		rel  string
		size int64
		mod  int64
	}
	var stats []fileStat

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		stats = append(stats, fileStat{
			rel:  filepath.ToSlash(rel),
			size: info.Size(),
			mod:  info.ModTime().UnixNano(),
		})
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to walk %s", dir)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].rel < stats[j].rel })

	h := sha256.New()
	for _, s := range stats {
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", s.rel, s.size, s.mod)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

package texture

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// NormalSuffix marks a normal map: "brick_normal.jpg" lights "brick.jpg".
const NormalSuffix = "_normal"

// extRank orders formats for the same stem; lower wins. Lossless formats
// beat JPEG so a re-exported PNG shadows the original photo.
var extRank = map[string]int{
	".png":  0,
	".tga":  1,
	".tif":  2,
	".tiff": 2,
	".bmp":  3,
	".webp": 4,
	".gif":  5,
	".jpg":  6,
	".jpeg": 6,
}

// Index maps lowercase texture stems to filesystem paths.
type Index struct {
	entries map[string]string // stem.lower() → full path
}

// BuildIndex scans dir and its subdirectories for image files.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}

	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		rank, ok := extRank[ext]
		if !ok {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

		existing, exists := idx.entries[stem]
		if !exists || rank < extRank[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[stem] = path
		}
		return nil
	})

	return idx
}

// ResolvePath returns the filesystem path for a texture name, or ("", false).
// Directories and extensions in name are ignored.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	texName = strings.ReplaceAll(texName, "\\", "/")
	base := filepath.Base(texName)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Pair finds a normal map and its diffuse texture. When several pairs exist
// the alphabetically first one wins.
func (idx *Index) Pair() (normal, diffuse string, ok bool) {
	var stems []string
	for stem := range idx.entries {
		if strings.HasSuffix(stem, NormalSuffix) {
			stems = append(stems, stem)
		}
	}
	sort.Strings(stems)
	for _, stem := range stems {
		if d, found := idx.entries[strings.TrimSuffix(stem, NormalSuffix)]; found {
			return idx.entries[stem], d, true
		}
	}
	return "", "", false
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}

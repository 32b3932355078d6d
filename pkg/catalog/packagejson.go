package catalog

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/changetower/pkg/errors"
)

// ImportResult splits the expo-* dependencies of a package.json into known
// catalog modules and unknown ones.
type ImportResult struct {
	Matched   []string `json:"matched"`
	Unmatched []string `json:"unmatched"`
	Total     int      `json:"total"`
}

type packageFile struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// ParsePackageJSON collects expo-* names from dependencies and
// devDependencies. Names are sorted. Malformed JSON yields an
// INVALID_MANIFEST error.
func ParsePackageJSON(data []byte) (*ImportResult, error) {
	var pkg packageFile
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid package.json file")
	}

	all := make(map[string]string, len(pkg.Dependencies)+len(pkg.DevDependencies))
	maps.Copy(all, pkg.Dependencies)
	maps.Copy(all, pkg.DevDependencies)

	res := &ImportResult{Matched: []string{}, Unmatched: []string{}}
	for _, name := range slices.Sorted(maps.Keys(all)) {
		if !strings.HasPrefix(name, "expo-") {
			continue
		}
		if _, ok := Lookup(name); ok {
			res.Matched = append(res.Matched, name)
		} else {
			res.Unmatched = append(res.Unmatched, name)
		}
	}
	res.Total = len(res.Matched) + len(res.Unmatched)
	return res, nil
}

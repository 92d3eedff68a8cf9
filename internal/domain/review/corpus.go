package review

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// LoadCorpus walks a labeled corpus laid out as
// <root>/<card name>/<image file>. Directory names label their images;
// underscores read as spaces so "The_Fool" labels as "The Fool".
// Samples come back sorted by SampleID for run-to-run determinism.
func LoadCorpus(root string) ([]Sample, error) {
	var samples []Sample
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		label := filepath.Dir(rel)
		if label == "." {
			// Files directly under the root carry no label.
			return nil
		}
		samples = append(samples, Sample{
			SampleID:    filepath.ToSlash(rel),
			GroundTruth: strings.ReplaceAll(filepath.Base(label), "_", " "),
			Path:        path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus %s: %w", root, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("corpus %s contains no labeled samples", root)
	}
	sort.Slice(samples, func(a, b int) bool {
		return samples[a].SampleID < samples[b].SampleID
	})
	return samples, nil
}

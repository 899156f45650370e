package problem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cpgrab/cpgrab/internal/judge"
)

// ErrSamplesExist means a target sample file is already on disk and force
// was not given.
var ErrSamplesExist = errors.New("sample files already exist")

// WriteSamples stores samples as <problem>_<n>.in / <problem>_<n>.out with
// 1-based contiguous numbering in sample order. An output file is written
// only when the sample has output. Without force, any pre-existing target
// aborts the whole write before touching the directory.
func WriteSamples(dir, problem string, samples []judge.SampleTest, force bool) (int, error) {
	if !force {
		for i := range samples {
			name := samplePath(dir, problem, i+1, "in")
			if _, err := os.Stat(name); err == nil {
				return 0, fmt.Errorf("%s: %w", name, ErrSamplesExist)
			}
		}
	}

	written := 0
	for i, s := range samples {
		in := samplePath(dir, problem, i+1, "in")
		if err := os.WriteFile(in, []byte(s.Input+"\n"), 0o644); err != nil {
			return written, err
		}
		if s.Output != "" {
			out := samplePath(dir, problem, i+1, "out")
			if err := os.WriteFile(out, []byte(s.Output+"\n"), 0o644); err != nil {
				return written, err
			}
		}
		written++
	}
	return written, nil
}

func samplePath(dir, problem string, n int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d.%s", problem, n, ext))
}

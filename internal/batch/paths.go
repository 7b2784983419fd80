package batch

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/joseph-ayodele/ensayos/internal/common"
)

// DefaultPattern is the glob used when none is given.
const DefaultPattern = "*.pdf"

// rePlaceholder matches {num} with an optional integer format: {num:d},
// {num:5d} (space padded), {num:05d} or {num:05} (zero padded).
var rePlaceholder = regexp.MustCompile(`\{num(?::(0)?(\d*)d?)?\}`)

// RangePaths expands every {num} placeholder in template for each integer in
// [start, end]. A template without a placeholder is rejected, since it would
// name the same file for every number.
func RangePaths(template string, start, end int) ([]string, error) {
	if !rePlaceholder.MatchString(template) {
		return nil, fmt.Errorf("%w: template %q has no {num} placeholder", common.ErrInvalidInput, template)
	}
	if end < start {
		return nil, fmt.Errorf("%w: range end %d before start %d", common.ErrInvalidInput, end, start)
	}
	out := make([]string, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, rePlaceholder.ReplaceAllStringFunc(template, func(m string) string {
			sub := rePlaceholder.FindStringSubmatch(m)
			zero, width := sub[1], sub[2]
			if width == "" {
				return strconv.Itoa(n)
			}
			w, _ := strconv.Atoi(width)
			if zero != "" {
				return fmt.Sprintf("%0*d", w, n)
			}
			return fmt.Sprintf("%*d", w, n)
		}))
	}
	return out, nil
}

// GlobPaths returns the sorted matches of pattern inside dir. "**" matches
// any number of directories, so "**/*.pdf" walks the whole tree.
func GlobPaths(dir, pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	matches, err := doublestar.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	sort.Strings(matches)
	return matches, nil
}

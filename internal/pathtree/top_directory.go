package pathtree

import "strings"

// DominantTopDirectory returns the first segment shared by the most paths that
// contain a separator. Ties go to the directory seen first. The boolean is
// false when no path has a leading directory.
func DominantTopDirectory(paths []string) (string, bool) {
	occurrences := make(map[string]int)
	firstSeenOrder := make([]string, 0)
	for _, path := range paths {
		topDirectory, remainder, hasSeparator := strings.Cut(strings.TrimLeft(path, SegmentSeparator), SegmentSeparator)
		if !hasSeparator || len(topDirectory) == 0 || len(remainder) == 0 {
			continue
		}
		if _, seen := occurrences[topDirectory]; !seen {
			firstSeenOrder = append(firstSeenOrder, topDirectory)
		}
		occurrences[topDirectory]++
	}

	dominantDirectory := ""
	dominantCount := 0
	for _, topDirectory := range firstSeenOrder {
		if occurrences[topDirectory] > dominantCount {
			dominantDirectory = topDirectory
			dominantCount = occurrences[topDirectory]
		}
	}
	return dominantDirectory, dominantCount > 0
}

package rasterize

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// collectImages gathers the PNG files a rasterizer wrote into dir and assigns
// slide numbers from their filenames. zeroBased handles converters that count
// pages from zero. When any filename resists parsing, the whole set falls
// back to lexicographic order with sequential numbering and a warning.
func collectImages(dir string, zeroBased bool) ([]SlideImage, []string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []string{fmt.Sprintf("read slides dir: %v", err)}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return nil, nil
	}
	sort.Strings(names)

	images := make([]SlideImage, 0, len(names))
	parseable := true
	for _, name := range names {
		number, ok := trailingNumber(name)
		if !ok {
			parseable = false
			break
		}
		if zeroBased {
			number++
		}
		images = append(images, SlideImage{Number: number, Path: filepath.Join(dir, name)})
	}

	if !parseable {
		images = images[:0]
		for i, name := range names {
			images = append(images, SlideImage{Number: i + 1, Path: filepath.Join(dir, name)})
		}
		return images, []string{"slide filenames not numbered, assigned sequential order"}
	}

	sort.Slice(images, func(i, j int) bool { return images[i].Number < images[j].Number })
	return images, nil
}

// trailingNumber extracts the digit run that ends the filename stem, e.g.
// slide-07.png -> 7 and slide_003.png -> 3.
func trailingNumber(name string) (int, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	end := len(stem)
	start := end
	for start > 0 && stem[start-1] >= '0' && stem[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	number, err := strconv.Atoi(stem[start:end])
	if err != nil {
		return 0, false
	}
	return number, true
}

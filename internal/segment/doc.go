// Package segment renders per-slide video segments and joins them into the
// final module video. Each segment holds the slide image for exactly the
// narration's duration; the join is a lossless stream copy.
package segment

// Package rasterize converts deck archives into per-slide PNG images. The
// primary path shells out to a document converter and a PDF rasterizer; when
// neither is usable it composites slide geometry directly so the pipeline can
// still produce a video.
package rasterize

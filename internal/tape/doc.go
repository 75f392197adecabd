// Package tape lays label bitmaps out on a single printer strip and writes the
// result as PNG, BMP or TIFF.
package tape

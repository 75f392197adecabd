// Package label turns normalized records into printable bitmaps.
//
// A caption comes from a template with :field: placeholders (or the "auto"
// rule: Label, else Value followed by Unit) and is drawn with a host font found
// by family and weight, falling back to a built-in bitmap face. Captions
// narrower than the tape height are rotated to run along the tape. Symbols are
// QR codes of the record's BarCode.
package label

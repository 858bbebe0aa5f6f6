// Package conv provides checked integer conversions.
//
// Use them where a value crosses a fixed-width boundary that data from
// outside the process controls: payload headers and block numbers read
// back from object stores. Loop indices and sizes bounded by construction
// use direct casts.
package conv

// Package placement maps design rectangles between the coordinate spaces a
// design passes through (the 600x600 editing canvas, the decoded shirt
// raster, the vendor print area) and models the interactive canvas that
// produces those rectangles.
//
// Every rectangle that crosses a package boundary travels as a Placement,
// which pairs the raw Rect with the Space it is expressed in. Coordinates stay
// fractional through any number of transforms and are rounded only when a
// rasterizer consumes them via Placement.Pixels.
package placement

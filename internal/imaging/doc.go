// Package imaging holds the small conversions between uploaded files, data
// URLs and generation.Image values used by the HTTP layer.
package imaging

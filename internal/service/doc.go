// Package service provides the application-level image actions. Every call
// that reaches the image model goes through the task gate, so at most one
// generation runs at a time and later requests queue in arrival order.
package service

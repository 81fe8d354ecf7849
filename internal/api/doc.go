// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts the multipart upload endpoints and the gate
// control endpoints to the image service.
package api

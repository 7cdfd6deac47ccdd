//go:build cull_debug

package geom

// Finiteness assertions are enabled with -tags cull_debug.
const debugAssertions = true

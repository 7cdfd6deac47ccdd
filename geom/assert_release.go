//go:build !cull_debug

package geom

const debugAssertions = false

// Package entities provides the owned domain values of the bridge.
// Everything here is plain Go data: the loader metadata extracted from a
// DS ROM, the sync data loaded from a dsd project, and the dsd config itself.
// Their fixed-layout foreign counterparts live in package ffi.
package entities

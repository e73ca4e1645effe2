// Package ffi defines the C layout of the records handed to the disassembler
// and the codecs that build them from, and return them to, domain values.
//
// Every type here mirrors a struct declared on the Java side (JNA
// Structure subclasses), field for field. Booleans are carried as uint8.
// A value of these types is a foreign handle: only a codec's Externalize
// creates one, and it must be passed to the matching Internalize exactly
// once.
package ffi

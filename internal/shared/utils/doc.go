// Package utils holds small helpers shared by the catalog loader and the
// REST surface: identifier validation and content hashing.
package utils

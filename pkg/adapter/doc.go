// Package adapter defines the boundary to the external document index that
// supplies vector, lexical, keyword, and title rankings, along with a REST
// transport binding and an on-disk record cache. The index implementations
// themselves live behind this boundary.
package adapter

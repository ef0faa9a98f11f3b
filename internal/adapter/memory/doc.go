// Package memory provides in-process implementations of the storage ports.
// They back the "memory" storage driver for local runs and demos; data is
// lost on restart. Every store is safe for concurrent use.
package memory

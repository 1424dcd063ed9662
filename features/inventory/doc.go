// Package inventory records donated materials and searches them.
package inventory

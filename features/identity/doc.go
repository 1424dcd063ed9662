// Package identity registers readers and librarians and manages their credentials,
// reader status and zone.
package identity

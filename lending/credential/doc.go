// Package credential implements the password credential contract of the lending engine.
//
// A Credential holds a one-way hash produced by a Hasher. The plaintext is never stored,
// and the hash itself is only reachable by the SQL driver through driver.Valuer/sql.Scanner.
// Verification is delegated to the Hasher, which compares in constant time.
package credential

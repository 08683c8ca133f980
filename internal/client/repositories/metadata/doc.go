// Package metadata is a small key/value store in the local client database.
// It holds session state such as the sealed identity refresh token.
package metadata

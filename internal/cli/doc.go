// Package cli implements the mergevet command-line interface.
package cli

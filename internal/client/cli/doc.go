// Package cli provides the gophtasks command-line client.
//
// Every invocation is a single cobra command: the root pre-run hook loads
// configuration, reads the stored session and builds an API client, then
// the command talks to the server once and prints the result.
//
// Commands:
//   - register, login, logout
//   - list [--category] [--search] [--sort], stats
//   - add, edit, delete
//   - done/undone, archive/unarchive, star/unstar
//   - health
//
// The login token lives in the session file (see package session); a 401
// from the server clears it.
package cli

// Package directory resolves search scope expressions to nodes and their
// public keys.
//
// A search scope is a disjunction of key:value terms joined by " OR ", for
// example:
//
//	role:webserver OR name:batch-*
//
// Values may contain * wildcards where the backing directory supports
// pattern matching. The implicit "name" key matches the node name itself.
//
// Two implementations are provided:
//
//   - StaticDirectory keeps the node registry in memory. It supports the
//     full expression dialect including wildcards and is the directory used
//     by the control server, populated through its registration API.
//   - DNSDirectory resolves scopes through SRV and TXT records published in
//     a DNS zone, for deployments where node membership already lives in
//     DNS. Wildcards are not supported there.
package directory

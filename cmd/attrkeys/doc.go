// Package main (cmd/attrkeys) implements key custody tooling for attribute
// encryption nodes.
//
// attrkeys generates P-256 node key pairs, splits a private key into Shamir
// shares for offline escrow, and restores a key from a quorum of shares.
//
// Example usage:
//
//	attrkeys generate --name=web-01 --out-dir=/etc/attrcrypt
//	attrkeys split --shares=5 --threshold=3 /etc/attrcrypt/web-01.key
//	attrkeys restore --out=restored.key <share> <share> <share>
package main

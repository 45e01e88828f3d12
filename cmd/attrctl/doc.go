// Package main (cmd/attrctl) implements the command-line client for an
// attribute server.
//
// attrctl covers the full control API: reading and writing attributes,
// cross-node reads, enablement overrides, search scope configuration, and
// directory registration.
//
// Example usage:
//
//	attrctl --server-url=http://127.0.0.1:8080 write ftp.password s3Cr3T
//	attrctl read ftp.password
//	attrctl scope "role:webserver OR name:db-*"
//	attrctl register-node db-01 ./db-01.pub role=database
package main

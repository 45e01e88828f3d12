// Package main (cmd/attrserver) implements the attribute server of a node.
//
// The server hosts the node's hierarchical attribute document and exposes the
// encrypted attribute lifecycle over HTTP: policy-gated reads, the
// create-or-update write path, enablement overrides, search scope
// configuration, and cross-node reads against a shared document backend.
//
// The document backend is selected by URI (file://, vault://, s3://, mem://),
// so the same binary serves local development and cloud deployments. Scope
// resolution uses the in-memory directory populated through the registration
// API by default, or DNS records when a zone is configured.
//
// The server implements graceful shutdown on termination signals
// (SIGINT/SIGTERM) and supports health checks, drain handling, and optional
// profiling endpoints.
//
// Example usage:
//
//	attrserver --node-id=web-01 \
//	    --node-key-file=/etc/attrcrypt/web-01.key \
//	    --store-uri=vault://vault.internal:8200/secret/nodes \
//	    --listen-addr=0.0.0.0:8080
package main

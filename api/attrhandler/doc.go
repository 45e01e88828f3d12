// Package attrhandler implements the HTTP control API of an attribute
// server.
//
// The API exposes the orchestrator's operations over REST so external
// tooling can read, write, and manage encrypted attributes without running
// recipe code:
//
//	GET    /api/v1/attr/{path}                  read a local attribute
//	PUT    /api/v1/attr/{path}                  write a local attribute
//	GET    /api/v1/remote/{node_id}/attr/{path} read another node's attribute
//	GET    /api/v1/enabled                      effective enablement state
//	PUT    /api/v1/enabled                      override or reset enablement
//	POST   /api/v1/scope                        configure the search scope
//	POST   /api/v1/nodes                        register a directory node
//	DELETE /api/v1/nodes/{node_id}              remove a directory node
//
// Attribute paths appear dot-separated in URLs. Every attribute operation
// goes through the orchestrator, so the API honors the enablement policy and
// the create-or-update write lifecycle exactly as recipes do.
//
// The package also provides Client, a typed HTTP client for the same API.
package attrhandler

// Package bridge wires the satgate MCP server: configuration, session store,
// auth service backend (remote or demo), lifecycle events and transport.
package bridge

// Package apiconnect holds the Connect clients and handlers for the
// splitledger.v1 services. Every client and handler is configured with
// the api.JSONCodec.
package apiconnect

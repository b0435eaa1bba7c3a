// Package api defines the request and response messages of the tripsettle
// Connect services. Messages are plain structs encoded as JSON; monetary
// values are decimal strings such as "12.50".
package api

// Package api holds the OpenAPI document served at /docs/openapi.yaml.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte

// Package secret resolves credentials referenced from configuration.
//
// A configuration value may name a secret instead of holding it:
//
//	api_keys: ["secretref:env:ENSEMBLOPS_ADMIN_KEY"]
//	headers:
//	  Authorization: "Bearer secretref:file:upstream-token"
//
// Values are first expanded strictly against the environment (see
// ExpandEnvStrict), then every "secretref:<provider>:<ref>" occurrence is
// replaced by the provider's answer. Two providers ship with the package:
// "env" reads an environment variable and "file" reads a file under a
// directory such as /run/secrets.
package secret

package v1

import "strings"

// Covers are plain static files, they carry no session.
var authenticationAllowlist = map[string]bool{
	"/health":   true,
	"/covers/*": true,
	"/thumbs/*": true,
}

// isUnauthorizeAllowed returns whether the path is exempted from authentication.
// Support the wildcard character *.
func isUnauthorizeAllowed(path string) bool {
	for k := range authenticationAllowlist {
		if strings.HasSuffix(k, "*") {
			if strings.HasPrefix(path, strings.TrimSuffix(k, "*")) {
				return true
			}
		}
	}

	return authenticationAllowlist[path]
}

// Package version provides build version information embedding for
// authkit and the services that link it.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/skillsenselab/authkit/version.Version=1.0.0"
//
// UserAgent derives the "authkit/<version>" string sent on outbound
// HTTP requests to identity providers.
package version

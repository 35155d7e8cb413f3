// Userdir serves the user directory over HTTP.
//
// Usage:
//
//	# Apply pending database migrations
//	userdir migrate --config userdir.yaml
//
//	# Start the HTTP server
//	userdir serve --config userdir.yaml
//
//	# Show version information
//	userdir version
//
// Every setting can also be supplied through USERDIR_* environment variables,
// which take precedence over the config file.
package main

import (
	"fmt"
	"os"

	"github.com/jrazmi/userdir/sdk/environment"
)

func main() {
	if err := environment.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}
	Execute()
}

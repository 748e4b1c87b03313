// Command funnel runs the lead-capture funnel against a local profile.
package main

import "github.com/mesh-intelligence/leadfunnel/internal/cli"

func main() {
	cli.Execute()
}

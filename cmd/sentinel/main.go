// Command sentinel runs the travel-compliance background intelligence
// engine.
//
// Usage:
//
//	sentinel [command]
//
// Available Commands:
//
//	run         Start the engine and its HTTP surface
//	usage       Print usage metrics from the configured ledger
//	route       Show which provider the routing policy would pick for a query
//	version     Print version information
//	completion  Generate shell completion script
//
// Use "sentinel [command] --help" for more information about a command.
package main

func main() {
	Execute()
}

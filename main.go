package main

import "github.com/xll-gen/implib/cmd"

// main is the entry point of the implib CLI application.
// It executes the root command, which parses arguments and exits with the run's status.
func main() {
	cmd.Execute()
}

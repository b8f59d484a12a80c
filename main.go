// The main package for the aisignals executable.
package main

import (
	"github.com/machinecinema/aisignals/cmd"
)

func main() {
	cmd.Execute()
}

// The main package for the pdfmirror executable.
package main

import (
	"github.com/cirslinger/pdfmirror/cmd"
)

func main() {
	cmd.Execute()
}

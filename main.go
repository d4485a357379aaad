// File: main.go
package main

import (
	"github.com/xkilldash9x/concierge-cli/cmd"
)

func main() {
	cmd.Execute()
}

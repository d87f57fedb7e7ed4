// cmd/softwatch/main.go
package main

import (
	"fmt"
	"os"

	"github.com/softwatch/softwatch/cmd/softwatch/commands"
)

func main() {
	if err := commands.NewCommand().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

package main

import "github.com/matthieukhl/commercial-manager/internal/cmd"

func main() {
	cmd.Execute()
}

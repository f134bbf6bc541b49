package main

import "github.com/oshokin/flipclock/cmd/flipclock/cmd"

func main() {
	cmd.Execute()
}

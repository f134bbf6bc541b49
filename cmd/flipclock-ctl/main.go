package main

import "github.com/oshokin/flipclock/cmd/flipclock-ctl/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/oshokin/alarm-clock/cmd/alarm-clock-status/cmd"

func main() {
	cmd.Execute()
}

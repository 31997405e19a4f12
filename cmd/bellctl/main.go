package main

import "github.com/oshokin/bell-scheduler/cmd/bellctl/cmd"

func main() {
	cmd.Execute()
}

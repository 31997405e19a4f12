package main

import "github.com/oshokin/bell-scheduler/cmd/bell-intake/cmd"

func main() {
	cmd.Execute()
}

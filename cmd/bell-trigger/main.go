package main

import "github.com/oshokin/bell-scheduler/cmd/bell-trigger/cmd"

func main() {
	cmd.Execute()
}

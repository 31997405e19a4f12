package main

import "github.com/oshokin/bell-scheduler/cmd/bell-normalizer/cmd"

func main() {
	cmd.Execute()
}

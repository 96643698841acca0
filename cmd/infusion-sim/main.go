package main

import "github.com/oshokin/infusion-controller/cmd/infusion-sim/cmd"

func main() {
	cmd.Execute()
}

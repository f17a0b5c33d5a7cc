package main

import "github.com/Norgate-AV/ice/cmd"

func main() {
	cmd.Execute()
}

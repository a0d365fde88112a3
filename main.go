package main

import "github.com/frahmantamala/paysuite/cmd"

func main() {
	cmd.Execute()
}

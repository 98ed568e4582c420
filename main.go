package main

import "github.com/cristianadrielbraun/qrstore/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/ydegt/putcall/internal/cli"

func main() {
	cli.Run()
}

package main

import "github.com/masmgr/testledger/cmd"

func main() {
	cmd.Run()
}

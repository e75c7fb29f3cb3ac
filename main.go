package main

import "github.com/codewithdpk/fetch-network-event-poller/internal/cli"

func main() {
	cli.Execute()
}

package main

import (
	"os"

	dialchatcmder "github.com/papercomputeco/dialchat/cmd/dialchat"
)

func main() {
	cmd := dialchatcmder.NewDialchatCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

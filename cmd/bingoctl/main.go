package main

import (
	"github.com/bingoparty/bingoparty-go/internal/cli"
)

func main() {
	cli.Execute()
}

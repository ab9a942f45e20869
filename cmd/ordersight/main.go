package main

import "github.com/matthieukhl/ordersight/internal/cmd"

func main() {
	cmd.Execute()
}

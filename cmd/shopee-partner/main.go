// Package main is the entry point for the shopee-partner service.
package main

import (
	"os"

	"github.com/ordersync/shopee-partner/cmd/shopee-partner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

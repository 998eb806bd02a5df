package main

import (
	"github.com/nguyengg/zipcd/internal/cmd"
)

func main() {
	_, err := cmd.NewParser().Parse()
	exit(err)
}

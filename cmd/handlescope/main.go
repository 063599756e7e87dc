// Package main implements the handlescope command: an HTTP task service
// whose every request runs its data access in a single unit of work.
package main

import (
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

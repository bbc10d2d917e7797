// Command hashpass prints a bcrypt hash for ADMIN_PASSWORD_HASH.
//
//	go run ./cmd/hashpass 's3cret'
package main

import (
	"fmt"
	"os"

	"github.com/iliyamo/classroom-seating/internal/utils"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpass <password>")
		os.Exit(2)
	}
	hash, err := utils.HashPassword(os.Args[1], 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/termshim/getch"
)

func main() {
	g, err := getch.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open terminal: %v\n", err)
		os.Exit(1)
	}
	defer g.Close()

	fmt.Println("press keys (q to exit):")

	for {
		key, err := g.Getch()
		if err != nil {
			var unknown *getch.UnknownSequenceError
			if errors.As(err, &unknown) {
				fmt.Printf("unknown sequence: %q\n", unknown.Seq)
				continue
			}
			fmt.Fprintf(os.Stderr, "read failed: %v\n", err)
			return
		}
		if key.Code == getch.KeyEOF {
			return
		}
		fmt.Printf("key: %s\n", key)
		if key == getch.Char('q') {
			return
		}
	}
}

//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package test

import (
	"io"
	"log"
	"os"
)

func getInput(path string) []byte {
	var f *os.File
	var err error
	if path == "-" || path == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(path) // #nosec G304 -- CLI tool intentionally reads user-provided paths
		if err != nil {
			log.Fatal(err)
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		log.Fatal(err)
	}

	return data
}

package main

import (
	"os"

	quillcmder "github.com/quillhq/quill/cmd/quill"
)

func main() {
	cmd := quillcmder.NewQuillCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

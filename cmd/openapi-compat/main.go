// Package main checks that the compiled-in API document stays backward
// compatible with a committed baseline.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"timebank/docs"
)

func main() {
	basePath := flag.String("base", "", "baseline swagger.yaml or swagger.json")
	revisionPath := flag.String("revision", "", "revision document; defaults to the document compiled into the server")
	dump := flag.Bool("dump", false, "print the compiled document and exit")
	flag.Parse()

	if *dump {
		fmt.Println(docs.SwaggerInfo.ReadDoc())
		return
	}
	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> [-revision <path>] | -dump")
		os.Exit(2)
	}

	base, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base document: %v\n", err)
		os.Exit(1)
	}

	var revision apiSurface
	if *revisionPath != "" {
		revision, err = loadFile(*revisionPath)
	} else {
		revision, err = parseSurface([]byte(docs.SwaggerInfo.ReadDoc()))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision document: %v\n", err)
		os.Exit(1)
	}

	breaking, added := diff(base, revision)
	for _, op := range added {
		fmt.Printf("added: %s\n", op)
	}
	if len(breaking) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range breaking {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}
	fmt.Println("openapi compatibility check passed")
}

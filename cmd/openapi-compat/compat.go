package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var httpMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"patch": true, "head": true, "options": true,
}

// apiSurface maps "METHOD /path" to the documented response codes.
type apiSurface map[string]map[string]bool

type document struct {
	Paths map[string]map[string]yaml.Node `yaml:"paths"`
}

type operationDoc struct {
	Responses map[string]yaml.Node `yaml:"responses"`
}

func loadFile(path string) (apiSurface, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSurface(raw)
}

// parseSurface reads a swagger document. JSON input parses as YAML.
func parseSurface(raw []byte) (apiSurface, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, errors.New("missing top-level paths field")
	}

	surface := make(apiSurface)
	for path, item := range doc.Paths {
		for method, node := range item {
			method = strings.ToLower(strings.TrimSpace(method))
			if !httpMethods[method] {
				continue
			}
			var op operationDoc
			if err := node.Decode(&op); err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
			}
			codes := make(map[string]bool, len(op.Responses))
			for code := range op.Responses {
				if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
					codes[code] = true
				}
			}
			surface[strings.ToUpper(method)+" "+path] = codes
		}
	}
	return surface, nil
}

// diff lists what revision breaks relative to base and which operations it adds.
func diff(base, revision apiSurface) (breaking, added []string) {
	for op, codes := range base {
		revCodes, ok := revision[op]
		if !ok {
			breaking = append(breaking, "removed operation: "+op)
			continue
		}
		for code := range codes {
			if !revCodes[code] {
				breaking = append(breaking, fmt.Sprintf("removed response code: %s -> %s", op, strings.ToUpper(code)))
			}
		}
	}
	for op := range revision {
		if _, ok := base[op]; !ok {
			added = append(added, op)
		}
	}
	sort.Strings(breaking)
	sort.Strings(added)
	return breaking, added
}

package main

import (
	"flag"
	"fmt"
	"strings"
)

type versionCmd struct {
	r *root
}

func (v *versionCmd) Program() string {
	return v.r.program
}

func (v *versionCmd) FlagSet() *flag.FlagSet {
	return v.r.fs
}

func (v *versionCmd) Run() error {
	fmt.Printf("%s version %s\n", v.r.program, versionString())
	return nil
}

func versionString() string {
	parts := []string{version}
	if commit != "" {
		parts = append(parts, commit)
	}
	if date != "" {
		parts = append(parts, date)
	}
	return strings.Join(parts, " ")
}

package main

import (
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/consensys/bavard"
)

const copyrightHolder = "Consensys Software Inc."

//go:generate go run main.go
func main() {
	bgen := bavard.NewBatchGenerator(copyrightHolder, 2025, "go-spindle")

	cfg := dispatchConfig{
		Widths: []uint{8, 16, 32, 64},
	}

	assertNoError(bgen.Generate(cfg, "word", "templates",
		bavard.Entry{
			File:      "../../dispatch_gen.go",
			Templates: []string{"dispatch.go.tmpl"},
			BuildTag:  "",
		},
	), "for word family %v", cfg.Widths)

	// run gofmt on whole directory
	runCmd("gofmt", "-w", "../../")

	// run goimports on whole directory
	runCmd("goimports", "-w", "../../")
}

func runCmd(name string, arg ...string) {
	fmt.Println(name, strings.Join(arg, " "))
	cmd := exec.Command(name, arg...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	assertNoError(cmd.Run(), "")
}

// dispatchConfig determines the set of widths making up the word family.
// Widening the family is a deliberate act: add the width here, regenerate,
// and extend the primitive tables to cover it.
type dispatchConfig struct {
	Widths []uint
}

func assertNoError(err error, contextAndArgs ...any) {
	if err != nil {
		msg := err.Error()

		if len(contextAndArgs) > 0 {
			allArgs := append(slices.Clone(contextAndArgs[1:]), err)
			msg = fmt.Sprintf(contextAndArgs[0].(string)+": %v", allArgs...)
		}

		fmt.Println(msg)
		os.Exit(1)
	}
}

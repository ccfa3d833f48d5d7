// Command staticlint bundles the analyzers run over this repository into a
// single multichecker binary: a set of x/tools passes, ineffassign, nilerr,
// the errcompare project analyzer and the staticcheck checks named in
// config.json next to the binary.
package main

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/patric-chuzhbe/travelboard/cmd/staticlint/errcompare"
)

// Config is the name of the JSON file listing the enabled staticcheck analyzers.
const Config = `config.json`

// ConfigData lists staticcheck analyzer names such as "SA1000" or "SA4010".
type ConfigData struct {
	Staticcheck []string
}

// defaultStaticcheck is used when no config.json sits next to the binary.
var defaultStaticcheck = []string{"SA1012", "SA4006", "SA4009", "SA5001", "SA9003"}

func loadConfig() (ConfigData, error) {
	cfg := ConfigData{Staticcheck: defaultStaticcheck}

	appfile, err := os.Executable()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(appfile), Config))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	err = json.Unmarshal(data, &cfg)

	return cfg, err
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("staticlint: reading %s: %v", Config, err)
	}

	myChecks := []*analysis.Analyzer{
		copylock.Analyzer,
		errorsas.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,

		ineffassign.Analyzer,
		nilerr.Analyzer,

		errcompare.Analyzer,
	}

	checks := make(map[string]bool)
	for _, v := range cfg.Staticcheck {
		checks[v] = true
	}

	for _, v := range staticcheck.Analyzers {
		if checks[v.Analyzer.Name] {
			myChecks = append(myChecks, v.Analyzer)
		}
	}

	multichecker.Main(myChecks...)
}

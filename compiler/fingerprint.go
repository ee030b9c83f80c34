package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/syssam/veneer/compiler/gen"
	"github.com/syssam/veneer/compiler/load"
)

// fingerprintVersion changes whenever generated output changes for the
// same input, invalidating every cached fingerprint.
const fingerprintVersion = "veneer/1"

// Fingerprint digests everything the generated files of pkg depend on: its
// non-generated sources, the output-relevant configuration and the enabled
// components.
func Fingerprint(pkg *load.Package, cfg *gen.Config, r *gen.Registry) (string, error) {
	h := sha256.New()
	fmt.Fprintln(h, fingerprintVersion)
	fmt.Fprintln(h, cfg.DirectivePrefix(), cfg.FileSuffix(), cfg.Runtime())
	fmt.Fprintln(h, cfg.HeaderComment())
	var features []string
	for _, f := range gen.AllFeatures {
		if cfg.FeatureEnabled(f.Name) {
			features = append(features, f.Name)
		}
	}
	fmt.Fprintln(h, strings.Join(features, ","))
	if r != nil {
		for _, c := range r.Components() {
			if cfg.ComponentEnabled(c.Name()) {
				fmt.Fprint(h, c.Name(), ",")
			}
		}
		fmt.Fprintln(h)
	}

	files := append([]string(nil), pkg.Filenames...)
	sort.Strings(files)
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return "", fmt.Errorf("veneer: fingerprint %s: %w", pkg.Path, err)
		}
		fmt.Fprintln(h, filepath.Base(name))
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("veneer: fingerprint %s: %w", pkg.Path, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

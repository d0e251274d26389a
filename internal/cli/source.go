package cli

import (
	"errors"
	"os"
	"time"

	"github.com/tzfold/tzfold"
	"github.com/tzfold/tzfold/internal/source"
)

// instantLayout is how commands read and print absolute instants: UTC
// wall time with a zero-padded four digit year.
const instantLayout = "%E4Y-%m-%dT%H:%M:%SZ"

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeBadZone     = "E002" // Zone data failed to load or decode
	ErrCodeBadInput    = "E003" // Malformed civil time, instant or layout
	ErrCodeNotFound    = "E004" // Zone or path not found
	ErrCodeCompile     = "E005" // Zone definition failed to compile
	ErrCodeWriteFailed = "E006" // File or bundle write error
)

// openSources builds the chain commands resolve zones against: --dir
// trees first, then --bundle files, then the system search path when no
// explicit source was given. The returned closer releases any open
// bundles.
func openSources(opts *RootOptions) (source.Source, func(), error) {
	var chain []source.Source
	var bundles []*source.Bundle
	closeAll := func() {
		for _, b := range bundles {
			b.Close()
		}
	}

	for _, dir := range opts.Dirs {
		chain = append(chain, source.NewDir(dir))
	}
	for _, path := range opts.Bundles {
		b, err := source.OpenBundle(path)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		bundles = append(bundles, b)
		chain = append(chain, b)
	}

	if len(chain) == 0 {
		if dir := os.Getenv("TZDIR"); dir != "" {
			chain = append(chain, source.NewDir(dir))
		}
		for _, dir := range []string{
			"/usr/share/zoneinfo",
			"/usr/share/lib/zoneinfo",
			"/usr/lib/locale/TZ",
		} {
			chain = append(chain, source.NewDir(dir))
		}
	}
	return source.NewChain(chain...), closeAll, nil
}

// loadZone resolves a zone name against src. "" and "UTC" name the UTC
// zone and "Local" the host zone, mirroring tzfold.Load.
func loadZone(src source.Source, name string) (tzfold.TimeZone, error) {
	switch name {
	case "", "UTC":
		return tzfold.UTC(), nil
	case "Local":
		return tzfold.Local(), nil
	}
	data, err := src.Lookup(name)
	if err != nil {
		return tzfold.TimeZone{}, err
	}
	return tzfold.LoadFromBytes(name, data)
}

// zoneErrorCode picks the error code for a failed zone resolution.
func zoneErrorCode(err error) string {
	if errors.Is(err, source.ErrNotFound) {
		return ErrCodeNotFound
	}
	return ErrCodeBadZone
}

// parseInstant reads an absolute instant written in instantLayout.
func parseInstant(s string) (time.Time, error) {
	return tzfold.Parse(instantLayout, s, tzfold.UTC())
}

func formatInstant(t time.Time) string {
	return tzfold.Format(instantLayout, t, tzfold.UTC())
}

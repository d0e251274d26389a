package tzfold

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/tzfold/tzfold/internal/registry"
	"github.com/tzfold/tzfold/internal/source"
	"github.com/tzfold/tzfold/internal/tzif"
)

// Load returns the named zone, read from $TZDIR or the system zoneinfo
// directories. "" and "UTC" name the UTC zone and "Local" the host
// zone. Loaded zones are cached; concurrent loads of one name share a
// single decode.
func Load(name string) (TimeZone, error) {
	switch name {
	case "", "UTC":
		return UTC(), nil
	case "Local":
		return Local(), nil
	}
	impl, err := defaultRegistry.Load(name)
	if err != nil {
		return TimeZone{}, &LoadError{Name: name, Err: err}
	}
	return TimeZone{impl: impl}, nil
}

// LoadFromBytes decodes TZif data directly, bypassing the search path
// and the cache. name is only recorded on the result.
func LoadFromBytes(name string, data []byte) (TimeZone, error) {
	z, err := tzif.Decode(name, data)
	if err != nil {
		return TimeZone{}, &LoadError{Name: name, Err: err}
	}
	return TimeZone{impl: newZoneImpl(z)}, nil
}

var defaultRegistry = registry.New(compileZone)

func compileZone(name string) (*zoneImpl, error) {
	src := systemSource()
	data, err := src.Lookup(name)
	if err != nil {
		return nil, err
	}
	z, err := tzif.Decode(name, data)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded zone",
		"zone", name,
		"source", src.String(),
		"transitions", len(z.Trans))
	return newZoneImpl(z), nil
}

// systemSource builds the search chain on every call so $TZDIR is
// honored per lookup rather than frozen at init.
func systemSource() source.Source {
	var chain []source.Source
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
	return source.NewChain(chain...)
}

var (
	localOnce sync.Once
	localZone TimeZone
)

// Local returns the host zone: $TZ when set, otherwise the zone
// /etc/localtime points into. Every failure degrades to UTC. The
// result is resolved once and kept for the life of the process.
func Local() TimeZone {
	localOnce.Do(func() { localZone = resolveLocal() })
	return localZone
}

func resolveLocal() TimeZone {
	tz, ok := os.LookupEnv("TZ")
	if !ok {
		return localtimeZone()
	}
	if tz == "" || tz == "UTC" {
		return UTC()
	}
	tz = strings.TrimPrefix(tz, ":")
	if strings.HasPrefix(tz, "/") {
		data, err := os.ReadFile(tz)
		if err != nil {
			return UTC()
		}
		name := zoneNameFromPath(tz)
		if name == "" {
			name = "Local"
		}
		z, err := LoadFromBytes(name, data)
		if err != nil {
			return UTC()
		}
		return z
	}
	z, err := Load(tz)
	if err != nil {
		slog.Warn("cannot load $TZ zone, using UTC", "TZ", tz, "error", err)
		return UTC()
	}
	return z
}

// localtimeZone resolves /etc/localtime, preferring the symlink target
// so the zone keeps its real name.
func localtimeZone() TimeZone {
	const localtime = "/etc/localtime"
	if target, err := os.Readlink(localtime); err == nil {
		if name := zoneNameFromPath(target); name != "" {
			if z, err := Load(name); err == nil {
				return z
			}
		}
	}
	data, err := os.ReadFile(localtime)
	if err != nil {
		return UTC()
	}
	z, err := LoadFromBytes("Local", data)
	if err != nil {
		return UTC()
	}
	return z
}

// zoneNameFromPath extracts a zone name from a path below a zoneinfo
// directory: "/usr/share/zoneinfo/America/New_York" yields
// "America/New_York".
func zoneNameFromPath(path string) string {
	const marker = "/zoneinfo/"
	if i := strings.LastIndex(path, marker); i >= 0 {
		return path[i+len(marker):]
	}
	return ""
}

// Package zonespec compiles CUE zone definitions into TZif zones.
// It is the fixture-building path: tests and the mkzone command write
// small CUE files naming the local time types, recorded transitions,
// and footer rule, and get back zones ready for tzif.Encode.
package zonespec

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/tzfold/tzfold/civil"
	"github.com/tzfold/tzfold/internal/posix"
	"github.com/tzfold/tzfold/internal/tzif"
)

// CompileBytes parses CUE source and compiles every entry under the
// top-level "zone" struct, e.g.:
//
//	zone: "America/Test": {
//		types: [
//			{offset: -28800, abbrev: "PST"},
//			{offset: -25200, dst: true, abbrev: "PDT"},
//		]
//		transitions: [
//			{at: "2011-03-13T10:00:00", type: 1},
//			{at: 1320570000, type: 0},
//		]
//		extend: "PST8PDT,M3.2.0,M11.1.0"
//	}
//
// Zones come back sorted by name. filename is used in error positions.
func CompileBytes(data []byte, filename string) ([]*tzif.Zone, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	zoneVal := v.LookupPath(cue.ParsePath("zone"))
	if !zoneVal.Exists() {
		return nil, &CompileError{
			Field:   "zone",
			Message: "no zone definitions found",
			Pos:     v.Pos(),
		}
	}
	iter, err := zoneVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var zones []*tzif.Zone
	for iter.Next() {
		z, err := Compile(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	if len(zones) == 0 {
		return nil, &CompileError{
			Field:   "zone",
			Message: "no zone definitions found",
			Pos:     zoneVal.Pos(),
		}
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].Name < zones[j].Name })
	return zones, nil
}

// Compile parses one CUE zone struct into a Zone named name.
func Compile(name string, v cue.Value) (*tzif.Zone, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	z := &tzif.Zone{Name: name, Version: 2}

	// Parse types (required, at least one)
	typesVal := v.LookupPath(cue.ParsePath("types"))
	if !typesVal.Exists() {
		return nil, &CompileError{
			Field:   "types",
			Message: "at least one local time type is required",
			Pos:     v.Pos(),
		}
	}
	typeIter, err := typesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for typeIter.Next() {
		ty, err := compileType(typeIter.Value())
		if err != nil {
			return nil, err
		}
		z.Types = append(z.Types, ty)
	}
	if len(z.Types) == 0 {
		return nil, &CompileError{
			Field:   "types",
			Message: "at least one local time type is required",
			Pos:     typesVal.Pos(),
		}
	}

	// Parse transitions (optional, strictly increasing)
	transVal := v.LookupPath(cue.ParsePath("transitions"))
	if transVal.Exists() {
		transIter, err := transVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for transIter.Next() {
			tx, err := compileTransition(transIter.Value(), len(z.Types))
			if err != nil {
				return nil, err
			}
			if n := len(z.Trans); n > 0 && tx.When <= z.Trans[n-1].When {
				return nil, &CompileError{
					Field:   "transitions",
					Message: fmt.Sprintf("transition times must be strictly increasing (entry %d)", n),
					Pos:     transIter.Value().Pos(),
				}
			}
			z.Trans = append(z.Trans, tx)
		}
	}

	// Parse extend (optional); its rule syntax decides the TZif version.
	extendVal := v.LookupPath(cue.ParsePath("extend"))
	if extendVal.Exists() {
		s, err := extendVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		rule, err := posix.Parse(s)
		if err != nil {
			return nil, &CompileError{
				Field:   "extend",
				Message: fmt.Sprintf("not a valid TZ rule: %v", err),
				Pos:     extendVal.Pos(),
			}
		}
		z.Extend = s
		if rule.Extended() {
			z.Version = 3
		}
	}

	return z, nil
}

// compileType parses one {offset, dst, abbrev} entry. dst defaults to
// false.
func compileType(v cue.Value) (tzif.Type, error) {
	var ty tzif.Type

	offVal := v.LookupPath(cue.ParsePath("offset"))
	if !offVal.Exists() {
		return ty, &CompileError{
			Field:   "types.offset",
			Message: "offset is required (seconds east of UTC)",
			Pos:     v.Pos(),
		}
	}
	off, err := offVal.Int64()
	if err != nil {
		return ty, formatCUEError(err)
	}
	ty.Offset = int(off)

	dstVal := v.LookupPath(cue.ParsePath("dst"))
	if dstVal.Exists() {
		isDST, err := dstVal.Bool()
		if err != nil {
			return ty, formatCUEError(err)
		}
		ty.IsDST = isDST
	}

	abbrevVal := v.LookupPath(cue.ParsePath("abbrev"))
	if !abbrevVal.Exists() {
		return ty, &CompileError{
			Field:   "types.abbrev",
			Message: "abbrev is required",
			Pos:     v.Pos(),
		}
	}
	ty.Abbrev, err = abbrevVal.String()
	if err != nil {
		return ty, formatCUEError(err)
	}

	return ty, nil
}

// compileTransition parses one {at, type} entry. at is either a unix
// second count or a civil timestamp string read as UTC.
func compileTransition(v cue.Value, ntypes int) (tzif.Transition, error) {
	var tx tzif.Transition

	atVal := v.LookupPath(cue.ParsePath("at"))
	if !atVal.Exists() {
		return tx, &CompileError{
			Field:   "transitions.at",
			Message: "at is required",
			Pos:     v.Pos(),
		}
	}
	when, err := compileInstant(atVal)
	if err != nil {
		return tx, err
	}
	tx.When = when

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return tx, &CompileError{
			Field:   "transitions.type",
			Message: "type is required",
			Pos:     v.Pos(),
		}
	}
	idx, err := typeVal.Int64()
	if err != nil {
		return tx, formatCUEError(err)
	}
	if idx < 0 || idx > 255 || idx >= int64(ntypes) {
		return tx, &CompileError{
			Field:   "transitions.type",
			Message: fmt.Sprintf("type index %d out of range (have %d types)", idx, ntypes),
			Pos:     typeVal.Pos(),
		}
	}
	tx.Index = uint8(idx)

	return tx, nil
}

func compileInstant(v cue.Value) (int64, error) {
	if s, err := v.String(); err == nil {
		cs, err := civil.Parse(s)
		if err != nil {
			return 0, &CompileError{
				Field:   "transitions.at",
				Message: fmt.Sprintf("bad timestamp %q: %v", s, err),
				Pos:     v.Pos(),
			}
		}
		sec, ok := cs.Unix()
		if !ok {
			return 0, &CompileError{
				Field:   "transitions.at",
				Message: fmt.Sprintf("timestamp %q out of range", s),
				Pos:     v.Pos(),
			}
		}
		return sec, nil
	}
	sec, err := v.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return sec, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

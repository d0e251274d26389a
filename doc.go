// Package tzfold maps between absolute instants and civil wall-clock
// times under IANA time zone rules.
//
// A TimeZone is loaded once (Load, LoadFromBytes) and then queried in
// two directions: At answers "what did the wall clock read at this
// instant", and FromCivil answers "when did the wall clock read this
// civil time". The second direction is the interesting one: around
// daylight saving transitions a civil reading may not exist (Skipped)
// or may occur twice (Repeated), and CivilLookup reports every instant
// involved rather than silently picking one.
//
// ARCHITECTURE:
//
// Segment Model:
// A zone partitions the entire int64 second range into half-open
// segments [start, end), each governed by one time type (offset,
// daylight flag, abbreviation). Segments come from three sources:
// - The era before the first recorded transition
// - The recorded transitions of the compiled zone data
// - The POSIX TZ footer rule extrapolating past the last transition
//
// Civil-to-Instant Resolution:
// 1. Normalize the civil reading and take it as a trial instant.
// 2. Look up the trial's segment, re-aim with that segment's offset,
//    repeat until settled. Offsets are tiny next to segment lengths,
//    so this takes a bounded number of steps.
// 3. Collect the settled segment and its neighbors, keeping each one
//    that really displays the reading.
// 4. One survivor is Unique, two are Repeated, zero means the reading
//    fell in a gap and is Skipped.
//
// CRITICAL PATTERNS:
//
// Half-Open Segments:
// Every instant belongs to exactly one segment, and a transition
// instant belongs to the segment it starts. All boundary
// classifications follow from this one convention.
//
// Total Conversions:
// At never fails, and FromCivil fails only for readings with no
// representable instant. Arithmetic near the ends of the instant
// range saturates instead of wrapping.
package tzfold

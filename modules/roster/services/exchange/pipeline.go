package exchange

import (
	"github.com/hotelstaff/roster/modules/roster/domain/aggregates/staff"
)

type Options struct {
	// SkipExisting seeds the duplicate filter with the identity keys of the
	// existing collection, so re-importing the same file accepts nothing.
	SkipExisting bool
	// UniqueBatch rejects records whose non-empty batch number is already used
	// by the existing collection or by an earlier record of the batch.
	UniqueBatch bool
}

func DefaultOptions() Options {
	return Options{SkipExisting: true, UniqueBatch: true}
}

// Batch is the outcome of screening one decoded input.
type Batch struct {
	Records []staff.Staff
	Report  Report
}

// Screen runs every raw record through the Normalizer and the duplicate Filter
// in source order. Accepted records keep id and sl unassigned.
func Screen(existing []staff.Staff, raws []map[string]any, opts Options) Batch {
	var seed []staff.IdentityKey
	if opts.SkipExisting {
		seed = make([]staff.IdentityKey, 0, len(existing))
		for _, s := range existing {
			seed = append(seed, staff.KeyOf(s))
		}
	}
	filter := NewFilter(seed...)

	taken := map[string]struct{}{}
	if opts.UniqueBatch {
		for _, s := range existing {
			if s.HasBatch() {
				taken[s.BatchNo] = struct{}{}
			}
		}
	}

	b := Batch{Report: Report{Entries: make([]Entry, 0, len(raws))}}
	for i, raw := range raws {
		rec, issues, err := Normalize(raw)
		if err != nil {
			e := Entry{Index: i, Outcome: OutcomeSkippedInvalid, Reason: ReasonMissingName}
			if v := text(raw["batchNo"]); v != "" {
				e.BatchNo = v
			}
			b.Report.add(e)
			continue
		}

		e := entryFor(i, rec)
		e.Issues = issues

		d := filter.Check(rec)
		e.Key = d.Key.String()
		if !d.Keep {
			e.Outcome = OutcomeSkippedDuplicate
			e.Reason = d.Reason
			b.Report.add(e)
			continue
		}

		if opts.UniqueBatch && rec.HasBatch() {
			if _, used := taken[rec.BatchNo]; used {
				e.Outcome = OutcomeSkippedInvalid
				e.Reason = ReasonBatchTaken
				b.Report.add(e)
				continue
			}
			taken[rec.BatchNo] = struct{}{}
		}

		e.Outcome = OutcomeAccepted
		b.Records = append(b.Records, rec)
		b.Report.add(e)
	}
	b.Report.summarize()
	return b
}

// Merge screens raws against existing and assigns collision-free identifiers
// to the accepted records. Callers must serialize Merge per collection.
func Merge(existing []staff.Staff, raws []map[string]any, opts Options) Batch {
	b := Screen(existing, raws, opts)
	Allocate(existing, len(b.Records)).Assign(b.Records)

	next := 0
	for i := range b.Report.Entries {
		if b.Report.Entries[i].Outcome != OutcomeAccepted {
			continue
		}
		b.Report.Entries[i].ID = b.Records[next].ID
		next++
	}
	return b
}

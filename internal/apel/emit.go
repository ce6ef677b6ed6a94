package apel

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
)

// headerLine opens every report file.
const headerLine = "APEL-normalised-summary-message: v0.4"

// separatorLine closes every record block.
const separatorLine = "%%"

// infrastructure is the fixed infrastructure tag of every record.
const infrastructure = "grid"

// nodeCount is the fixed node count of every record.
const nodeCount = 1

// endOfDayOffset rounds a latest end time up to the last second of its day.
const endOfDayOffset = 24*60*60 - 1

// anonymousDN is the identity value replaced by a synthesized generic user.
const anonymousDN = "N/A"

// Submit-host labels and metric names of the two benchmark branches.
const (
	hepspecHost   = "hepspec-hosts"
	hepscoreHost  = "hepscore-hosts"
	hepspecName   = "hepspec"
	hepscoreName  = "HEPscore23"
	zeroTolerance = 1e-9
)

// PortionResolver reports the HEPScore23 capacity fraction of a site.
type PortionResolver interface {
	Portion(ctx context.Context, resourceGroup string) (float64, error)
}

// Emitter formats merged records into the APEL normalised-summary schema.
type Emitter struct {
	Year     int
	Month    int
	Portions PortionResolver
}

// Write emits the header followed by every record in key order.
func (e *Emitter) Write(ctx context.Context, w io.Writer, records RecordSet) error {
	if _, err := fmt.Fprintln(w, headerLine); err != nil {
		return fmt.Errorf("apel: write header: %w", err)
	}

	for _, key := range records.SortedKeys() {
		block, err := e.formatRecord(ctx, key, records[key])
		if err != nil {
			return err
		}

		if _, err := io.WriteString(w, block); err != nil {
			return fmt.Errorf("apel: write record: %w", err)
		}
	}

	return nil
}

// formatRecord renders one merged record, split across two submit-host blocks
// when part of the site's capacity is benchmarked under HEPScore23.
func (e *Emitter) formatRecord(ctx context.Context, key RecordKey, rec Record) (string, error) {
	hs23, err := e.Portions.Portion(ctx, key.Site)
	if err != nil {
		return "", err
	}

	dn := key.DN
	if dn == anonymousDN {
		dn = fmt.Sprintf("generic %s user", key.VO)
	}

	type branch struct {
		host    string
		metric  string
		portion float64
	}

	branches := []branch{{host: hepspecHost, metric: hepspecName, portion: 1.0 - hs23}}
	if math.Abs(hs23) > zeroTolerance {
		branches = append(branches, branch{host: hepscoreHost, metric: hepscoreName, portion: hs23})
	}

	var sb strings.Builder

	for _, br := range branches {
		fmt.Fprintln(&sb, "Site:", key.Site)
		fmt.Fprintln(&sb, "SubmitHost:", br.host)
		fmt.Fprintln(&sb, "VO:", key.VO)
		fmt.Fprintln(&sb, "EarliestEndTime:", rec.MinTime)
		fmt.Fprintln(&sb, "LatestEndTime:", rec.MaxTime+endOfDayOffset)
		fmt.Fprintln(&sb, "Month:", fmt.Sprintf("%02d", e.Month))
		fmt.Fprintln(&sb, "Year:", e.Year)
		fmt.Fprintln(&sb, "Infrastructure:", infrastructure)
		fmt.Fprintln(&sb, "GlobalUserName:", dn)
		fmt.Fprintln(&sb, "Processors:", key.Cores)
		fmt.Fprintln(&sb, "NodeCount:", nodeCount)
		fmt.Fprintln(&sb, "WallDuration:", truncate(float64(rec.WallDur)*br.portion))
		fmt.Fprintln(&sb, "CpuDuration:", truncate(float64(rec.CPUDur)*br.portion))
		fmt.Fprintln(&sb, "NormalisedWallDuration:", fmt.Sprintf("{%s: %d}", br.metric, truncate(float64(rec.WallDur)*rec.NormFactor*br.portion)))
		fmt.Fprintln(&sb, "NormalisedCpuDuration:", fmt.Sprintf("{%s: %d}", br.metric, truncate(float64(rec.CPUDur)*rec.NormFactor*br.portion)))
		fmt.Fprintln(&sb, "NumberOfJobs:", truncate(float64(rec.Jobs)*br.portion))
		fmt.Fprintln(&sb, separatorLine)
	}

	return sb.String(), nil
}

// truncate drops the fractional part, flooring the non-negative quantities of
// a record block.
func truncate(v float64) int64 {
	return int64(v)
}

// Package normtable loads the fallback per-site HEPSpec normalization table.
//
// The table is a plain-text side file of `site factor` pairs. It is consulted
// only when the factors observed in the accounting data are implausible.
package normtable

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// commentPrefix marks lines to skip entirely.
const commentPrefix = "#"

// tokensPerLine is the exact token count of a well-formed table line.
const tokensPerLine = 2

// Table maps a site name to its fallback CPU normalization factor.
// It is immutable after loading.
type Table map[string]float64

// Load reads the table from path. A missing or unreadable file is an error;
// the caller treats it as fatal at startup.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open normalization table: %w", err)
	}
	defer f.Close()

	return Parse(f), nil
}

// Parse reads `site factor` pairs from r. Comment lines and malformed lines
// (wrong token count, unparsable factor) are silently skipped.
func Parse(r io.Reader) Table {
	table := Table{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, commentPrefix) {
			continue
		}

		tokens := strings.Fields(line)
		if len(tokens) != tokensPerLine {
			continue
		}

		factor, err := strconv.ParseFloat(tokens[1], 64)
		if err != nil {
			continue
		}

		table[tokens[0]] = factor
	}

	return table
}

// Lookup returns the fallback factor for site, if the table has one.
func (t Table) Lookup(site string) (float64, bool) {
	factor, ok := t[site]

	return factor, ok
}

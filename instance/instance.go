// Package instance parses the on-disk RCPSP instance format into an
// rcpsp.Instance: a whitespace-delimited, line-oriented grid with no
// nesting, read line by line with bufio.Scanner.
package instance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/vcoppe/rcpsp/bitset"
	"github.com/vcoppe/rcpsp/rcpsp"
)

// ErrTruncated indicates the file ended before every declared job line
// was read.
var ErrTruncated = errors.New("instance: file ended before all job lines were read")

// Load opens path and parses its contents.
func Load(path string) (*rcpsp.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("instance: open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads the instance text format from r:
//
//	line 1: n_jobs n_resources
//	line 2: capacity_0 … capacity_{n_resources-1}
//	lines 3..2+n_jobs (one per job i, in index order):
//	  duration w_0 … w_{n_resources-1} k s_1 … s_k
//	where k is the successor count and each s_t is a 1-based
//	successor index.
func Parse(r io.Reader) (*rcpsp.Instance, error) {
	scanner := bufio.NewScanner(r)

	nJobs, nResources, err := parseHeader(scanner)
	if err != nil {
		return nil, err
	}

	capacity, err := parseCapacity(scanner, nResources)
	if err != nil {
		return nil, err
	}

	duration := make([]int64, nJobs)
	consumption := make([][]int64, nJobs)
	predecessor := make([]*bitset.BitSet, nJobs)
	successor := make([]*bitset.BitSet, nJobs)
	for i := 0; i < nJobs; i++ {
		predecessor[i] = bitset.New(nJobs)
		successor[i] = bitset.New(nJobs)
	}

	for i := 0; i < nJobs; i++ {
		if !scanner.Scan() {
			return nil, ErrTruncated
		}
		fields := strings.Fields(scanner.Text())

		d, rest, err := parseJobLine(fields, nResources)
		if err != nil {
			return nil, fmt.Errorf("instance: job %d: %w", i, err)
		}
		duration[i] = d.duration
		consumption[i] = d.consumption

		for _, s := range rest {
			predecessor[s].Set(i)
			successor[i].Set(s)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("instance: scan: %w", err)
	}

	return rcpsp.NewInstance(duration, consumption, predecessor, successor, capacity)
}

func parseHeader(scanner *bufio.Scanner) (nJobs, nResources int, err error) {
	if !scanner.Scan() {
		return 0, 0, errors.New("instance: missing header line")
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("instance: header must have 2 fields, got %d", len(fields))
	}

	nJobs, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("instance: n_jobs: %w", err)
	}
	nResources, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("instance: n_resources: %w", err)
	}

	return nJobs, nResources, nil
}

func parseCapacity(scanner *bufio.Scanner, nResources int) ([]int64, error) {
	if !scanner.Scan() {
		if nResources == 0 {
			return nil, nil
		}
		return nil, errors.New("instance: missing capacity line")
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) != nResources {
		return nil, fmt.Errorf("instance: capacity line must have %d fields, got %d", nResources, len(fields))
	}

	capacity := make([]int64, nResources)
	for r, f := range fields {
		c, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("instance: capacity %d: %w", r, err)
		}
		capacity[r] = c
	}

	return capacity, nil
}

type jobLine struct {
	duration    int64
	consumption []int64
}

func parseJobLine(fields []string, nResources int) (jobLine, []int, error) {
	if len(fields) < 1+nResources+1 {
		return jobLine{}, nil, errors.New("line too short")
	}

	pos := 0
	duration, err := strconv.ParseInt(fields[pos], 10, 64)
	if err != nil {
		return jobLine{}, nil, fmt.Errorf("duration: %w", err)
	}
	pos++

	consumption := make([]int64, nResources)
	for r := 0; r < nResources; r++ {
		c, err := strconv.ParseInt(fields[pos], 10, 64)
		if err != nil {
			return jobLine{}, nil, fmt.Errorf("consumption %d: %w", r, err)
		}
		consumption[r] = c
		pos++
	}

	k, err := strconv.Atoi(fields[pos])
	if err != nil {
		return jobLine{}, nil, fmt.Errorf("successor count: %w", err)
	}
	pos++

	if len(fields) != pos+k {
		return jobLine{}, nil, fmt.Errorf("expected %d successor indices, got %d", k, len(fields)-pos)
	}

	successors := make([]int, k)
	for t := 0; t < k; t++ {
		s, err := strconv.Atoi(fields[pos])
		if err != nil {
			return jobLine{}, nil, fmt.Errorf("successor %d: %w", t, err)
		}
		successors[t] = s - 1 // 1-based in the file, 0-based in memory
		pos++
	}

	return jobLine{duration: duration, consumption: consumption}, successors, nil
}

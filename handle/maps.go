package handle

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ParseMaps parses the text of a /proc/<pid>/maps file.
func ParseMaps(data []byte) ([]Region, error) {
	var regions []Region
	s := bufio.NewScanner(bytes.NewReader(data))
	s.Buffer(make([]byte, 0, 4096), 1<<20)
	for lineno := 1; s.Scan(); lineno++ {
		line := s.Text()
		if line == "" {
			continue
		}
		r, err := parseMapsLine(line)
		if err != nil {
			return nil, fmt.Errorf("maps line %d: %w", lineno, err)
		}
		regions = append(regions, r)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return regions, nil
}

// parseMapsLine parses "start-end perms offset dev inode [path]".
func parseMapsLine(line string) (Region, error) {
	var fields [5]string
	rest := line
	for i := range fields {
		rest = strings.TrimLeft(rest, " \t")
		end := strings.IndexAny(rest, " \t")
		if end < 0 {
			end = len(rest)
		}
		if end == 0 {
			return Region{}, fmt.Errorf("too few fields in %q", line)
		}
		fields[i], rest = rest[:end], rest[end:]
	}

	lo, hi, ok := strings.Cut(fields[0], "-")
	if !ok {
		return Region{}, fmt.Errorf("bad address range %q", fields[0])
	}
	start, err := strconv.ParseUint(lo, 16, 64)
	if err != nil {
		return Region{}, fmt.Errorf("bad start address: %w", err)
	}
	end, err := strconv.ParseUint(hi, 16, 64)
	if err != nil {
		return Region{}, fmt.Errorf("bad end address: %w", err)
	}
	if end < start {
		return Region{}, fmt.Errorf("end %#x below start %#x", end, start)
	}

	perms := fields[1]
	if len(perms) < 4 {
		return Region{}, fmt.Errorf("bad permissions %q", perms)
	}
	var prot Prot
	if perms[0] == 'r' {
		prot |= ProtRead
	}
	if perms[1] == 'w' {
		prot |= ProtWrite
	}
	if perms[2] == 'x' {
		prot |= ProtExec
	}
	mapping := MappingPrivate
	if perms[3] == 's' {
		mapping = MappingShared
	}

	offset, err := strconv.ParseUint(fields[2], 16, 64)
	if err != nil {
		return Region{}, fmt.Errorf("bad offset: %w", err)
	}

	return Region{
		Start:   start,
		Length:  end - start,
		Offset:  offset,
		Prot:    prot,
		Mapping: mapping,
		Name:    strings.TrimLeft(rest, " \t"),
	}, nil
}

package targets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads a line-oriented target list: one URL per line, surrounding
// whitespace trimmed, blank lines and lines starting with '#' dropped.
// Order is preserved; it is the order results are reported in.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open target list: %w", err)
	}
	defer f.Close()

	urls, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read target list %s: %w", path, err)
	}
	return urls, nil
}

// Parse consumes r as a target list. Split out of Load so callers can feed
// in-memory lists.
func Parse(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

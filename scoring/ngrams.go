package scoring

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/bgallie/mzenigma/cryptors"
)

// IC is the index of coincidence of a text of symbol indices over an
// alphabet of n symbols: sum count*(count-1) / (L*(L-1)). English runs
// near 0.066, uniform random text near 1/n.
func IC(idx []int, n int) float64 {
	if len(idx) < 2 {
		return 0
	}
	counts := make([]int, n)
	for _, c := range idx {
		counts[c]++
	}
	var sum int
	for _, c := range counts {
		sum += c * (c - 1)
	}
	l := len(idx)
	return float64(sum) / float64(l*(l-1))
}

// IndexOfCoincidence is IC on text.
func IndexOfCoincidence(text string, a *cryptors.Alphabet) (float64, error) {
	idx, err := a.Indices(text)
	if err != nil {
		return 0, err
	}
	return IC(idx, a.Size()), nil
}

// Train counts every n-gram, n = 1..maxN, of corpus after normalising it
// to the alphabet. Word boundaries are dropped.
func Train(a *cryptors.Alphabet, corpus string, maxN int) map[string]int {
	if maxN > MaxOrder {
		maxN = MaxOrder
	}
	r := []rune(a.Normalize(corpus, 0))
	counts := make(map[string]int)
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(r); i++ {
			counts[string(r[i:i+n])]++
		}
	}
	return counts
}

// ReadNgrams reads n-gram counts, one "NGRAM COUNT" pair per line. Blank
// lines and lines starting with # are skipped.
func ReadNgrams(r io.Reader) (map[string]int, error) {
	counts := make(map[string]int)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("scoring: line %d: want \"NGRAM COUNT\", got %q", line, text)
		}
		count, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("scoring: line %d: %w", line, err)
		}
		counts[strings.ToUpper(fields[0])] += count
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// WriteNgrams writes counts in the format ReadNgrams reads, shortest
// n-grams first, most frequent first within a length.
func WriteNgrams(w io.Writer, counts map[string]int) error {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := len([]rune(keys[i])), len([]rune(keys[j]))
		if li != lj {
			return li < lj
		}
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	bw := bufio.NewWriter(w)
	for _, k := range keys {
		if _, err := fmt.Fprintf(bw, "%s %d\n", k, counts[k]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

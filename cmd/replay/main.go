// Command replay prints the pursuit events recorded in a bot trace
// directory, plus a per-waypoint summary.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"navbot/internal/persistence/trace"
)

func main() {
	var (
		traceDir = flag.String("trace", "./data/trace", "trace directory containing trace-*.jsonl.zst")
		quiet    = flag.Bool("quiet", false, "only print the summary")
	)
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*traceDir, "trace-*.jsonl.zst"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "list traces:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no trace files found in", *traceDir)
		os.Exit(1)
	}
	sort.Strings(files)

	type key struct{ waypoint, event string }
	counts := map[key]int{}
	var total int
	var firstTick, lastTick uint64

	for _, path := range files {
		if err := readFile(path, func(r trace.Record) {
			if total == 0 || r.Tick < firstTick {
				firstTick = r.Tick
			}
			if r.Tick > lastTick {
				lastTick = r.Tick
			}
			total++
			counts[key{r.Waypoint, r.Event}]++
			if !*quiet {
				if r.Event == trace.EventChose {
					fmt.Printf("tick %6d  %-11s %s\n", r.Tick, r.Event, r.Waypoint)
				} else {
					fmt.Printf("tick %6d  %-11s %s (%.1f units away)\n", r.Tick, r.Event, r.Waypoint, r.Dist)
				}
			}
		}); err != nil {
			fmt.Fprintln(os.Stderr, "read", path, ":", err)
			os.Exit(1)
		}
	}

	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].waypoint != keys[j].waypoint {
			return keys[i].waypoint < keys[j].waypoint
		}
		return keys[i].event < keys[j].event
	})

	fmt.Printf("%d events over ticks %d..%d in %d file(s)\n", total, firstTick, lastTick, len(files))
	for _, k := range keys {
		fmt.Printf("  %-12s %-11s %d\n", k.waypoint, k.event, counts[k])
	}
}

func readFile(path string, fn func(trace.Record)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var r trace.Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return fmt.Errorf("bad record %q: %w", sc.Text(), err)
		}
		fn(r)
	}
	return sc.Err()
}

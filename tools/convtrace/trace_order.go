package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
)

var (
	csvFile string
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "trace file written by the converge command")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	tr := readTrace(csvFile)
	fmt.Printf("%-18s %8s %14s %14s %s\n", "Phase", "N", "Metric", "Discrepancy", "Note")
	for i := range tr.n {
		if tr.failed[i] {
			fmt.Printf("%-18s %8d %14s %14s %s\n", tr.phase[i], tr.n[i], "-", "-", tr.note[i])
			continue
		}
		fmt.Printf("%-18s %8d %14.6e %14.6e %s\n", tr.phase[i], tr.n[i], tr.metric[i], tr.discrepancy[i], tr.note[i])
	}
	printOrders(tr)
}

type Trace struct {
	phase       []string
	n           []int
	metric      []float64
	discrepancy []float64
	failed      []bool
	note        []string
}

func (tr *Trace) Add(phase string, n int, metric, discrepancy float64, failed bool, note string) {
	tr.phase = append(tr.phase, phase)
	tr.n = append(tr.n, n)
	tr.metric = append(tr.metric, metric)
	tr.discrepancy = append(tr.discrepancy, discrepancy)
	tr.failed = append(tr.failed, failed)
	tr.note = append(tr.note, note)
}

// printOrders reports the observed order between successive successful
// resolutions: p = ln(d_i/d_j) / ln(N_j/N_i), sorted by resolution.
func printOrders(tr *Trace) {
	type obs struct {
		n int
		d float64
	}
	var good []obs
	for i := range tr.n {
		if !tr.failed[i] && tr.discrepancy[i] > 0 && !math.IsInf(tr.discrepancy[i], 0) {
			good = append(good, obs{tr.n[i], tr.discrepancy[i]})
		}
	}
	sort.Slice(good, func(i, j int) bool { return good[i].n < good[j].n })
	if len(good) < 2 {
		fmt.Printf("Not enough successful observations for an order estimate\n")
		return
	}
	fmt.Printf("Observed orders:\n")
	for i := 1; i < len(good); i++ {
		p := math.Log(good[i-1].d/good[i].d) / math.Log(float64(good[i].n)/float64(good[i-1].n))
		fmt.Printf("N = %5d -> %5d: p = %6.3f\n", good[i-1].n, good[i].n, p)
	}
}

func readTrace(csvFile string) (tr *Trace) {
	var (
		records     [][]string
		err         error
		f           *os.File
		metric      float64
		discrepancy float64
	)
	tr = &Trace{}
	if f, err = os.Open(csvFile); err != nil {
		panic(err)
	}
	defer f.Close()
	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = 6
	if records, err = r.ReadAll(); err != nil {
		panic(err)
	}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		phase, ntxt := rec[0], rec[1]
		n, _ := strconv.Atoi(ntxt)
		_, _ = fmt.Sscanf(rec[2], "%f", &metric)
		_, _ = fmt.Sscanf(rec[3], "%f", &discrepancy)
		failed, _ := strconv.ParseBool(rec[4])
		tr.Add(phase, n, metric, discrepancy, failed, rec[5])
	}
	return
}
